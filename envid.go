package lambdalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	envIDOnce   sync.Once
	envID       string
	invocations atomic.Int64
)

// ExecutionEnvID identifies the execution environment. It is kept under the
// temp dir, which Lambda preserves for the life of a sandbox, so a runtime
// restart inside the same sandbox reports the same id.
func ExecutionEnvID() string {
	envIDOnce.Do(func() {
		envID = ensureEnvID(filepath.Join(os.TempDir(), ".lambdalog"))
	})
	return envID
}

func ensureEnvID(dir string) string {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return uuid.New().String() // Fallback to ephemeral ID
	}

	idFile := filepath.Join(dir, "env-id")
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	newID := uuid.New().String()
	_ = os.WriteFile(idFile, []byte(newID), 0644)
	return newID
}

// nextInvocation counts invocations and reports whether this is the first
// one in the process.
func nextInvocation() (coldStart bool) {
	return invocations.Add(1) == 1
}
