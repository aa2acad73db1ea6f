// Package config reads the environment settings used by the Lambda
// wrapper.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
)

// Env holds the logging settings taken from the function environment.
type Env struct {
	// LogLevel is the root threshold.
	LogLevel string `default:"DEBUG"`
	// SDKLevel is the threshold of the AWS SDK logger.
	SDKLevel string `default:"WARN"`
}

// Variable names in lookup order. The first one set wins.
var (
	logLevelVars = []string{"log_level", "LOG_LEVEL", "AWS_LAMBDA_LOG_LEVEL"}
	sdkLevelVars = []string{"boto_level", "sdk_level", "SDK_LOG_LEVEL"}
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv loads Env from the process environment.
func FromEnv() (Env, error) {
	return Load(os.LookupEnv)
}

// Load fills Env with defaults and overrides them from lookup.
func Load(lookup LookupFunc) (Env, error) {
	var env Env
	if err := defaults.Set(&env); err != nil {
		return env, fmt.Errorf("config defaults: %w", err)
	}
	if v, ok := first(lookup, logLevelVars); ok {
		env.LogLevel = v
	}
	if v, ok := first(lookup, sdkLevelVars); ok {
		env.SDKLevel = v
	}
	return env, nil
}

func first(lookup LookupFunc, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
