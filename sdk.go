package lambdalog

import (
	"context"

	"github.com/aws/smithy-go/logging"
)

// SDKLoggerName is the logger the AWS SDK adapter writes through. Its
// threshold can be set on its own with WithLoggerLevel.
const SDKLoggerName = "aws-sdk"

// SDKLogger returns a logger for the AWS SDK for Go v2, e.g.
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithLogger(lambdalog.SDKLogger()))
func SDKLogger() logging.Logger {
	return sdkLogger{l: Named(SDKLoggerName), ctx: context.Background()}
}

type sdkLogger struct {
	l   *Logger
	ctx context.Context
}

func (s sdkLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	level := LevelDebug
	if classification == logging.Warn {
		level = LevelWarning
	}
	s.l.output(s.ctx, level, format, v, true)
}

// WithContext implements logging.ContextLogger.
func (s sdkLogger) WithContext(ctx context.Context) logging.Logger {
	s.ctx = ctx
	return s
}
