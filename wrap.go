package lambdalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/lambdalog/internal/config"
)

// Keys the wrapper adds to the static context.
const (
	RequestIDKey          = "aws_request_id"
	FunctionNameKey       = "function_name"
	FunctionVersionKey    = "function_version"
	InvokedFunctionARNKey = "invoked_function_arn"
	ColdStartKey          = "cold_start"
	ExecutionEnvIDKey     = "execution_env_id"
)

// Wrap returns a Lambda handler that calls Setup before every invocation.
//
// The threshold comes from the log_level environment variable (default
// DEBUG) and the AWS SDK logger's from boto_level (default WARN). Records
// carry the request id, the function identity and cold start information.
// A panic in h is logged at CRITICAL with its stack and then re-raised.
func Wrap[In, Out any](h func(context.Context, In) (Out, error), opts ...Option) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, event In) (Out, error) {
		setupInvocation(ctx, event, opts)
		defer logPanic()
		return h(ctx, event)
	}
}

// WrapNoResult is Wrap for handlers that only return an error.
func WrapNoResult[In any](h func(context.Context, In) error, opts ...Option) func(context.Context, In) error {
	return func(ctx context.Context, event In) error {
		setupInvocation(ctx, event, opts)
		defer logPanic()
		return h(ctx, event)
	}
}

func logPanic() {
	r := recover()
	if r == nil {
		return
	}
	// skip [logPanic]; runtime frames are dropped when formatting
	exc := newExcInfo(panicError(r), 1)
	root.Log(context.Background(), LevelCritical, "Unhandled panic in handler", ExcInfoKey, exc)
	panic(r)
}

func setupInvocation(ctx context.Context, event any, opts []Option) {
	env, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lambdalog: %v\n", err)
	}

	// Identity fields that are unknown outside Lambda are left out.
	fields := map[string]any{
		ColdStartKey:      nextInvocation(),
		ExecutionEnvIDKey: ExecutionEnvID(),
	}
	setNonEmpty(fields, RequestIDKey, requestID(ctx, event))
	setNonEmpty(fields, FunctionNameKey, lambdacontext.FunctionName)
	setNonEmpty(fields, FunctionVersionKey, lambdacontext.FunctionVersion)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		setNonEmpty(fields, InvokedFunctionARNKey, lc.InvokedFunctionArn)
	}

	var invalid []string
	sdkLevel := env.SDKLevel
	if _, err := ParseLevel(sdkLevel); err != nil {
		invalid = append(invalid, sdkLevel)
		sdkLevel = "INFO"
	}
	all := append([]Option{WithLoggerLevel(SDKLoggerName, sdkLevel)}, opts...)

	if err := Setup(env.LogLevel, fields, all...); err != nil {
		invalid = append([]string{env.LogLevel}, invalid...)
		if err := Setup("INFO", fields, all...); err != nil {
			fmt.Fprintf(os.Stderr, "lambdalog: %v\n", err)
			return
		}
	}
	for _, lvl := range invalid {
		root.Errorf("Invalid log level: %s", lvl)
	}
}

// requestID prefers the API Gateway request id carried by the event and
// falls back to the Lambda request id. It returns "" when neither exists.
func requestID(ctx context.Context, event any) string {
	var id string
	switch e := event.(type) {
	case events.APIGatewayProxyRequest:
		id = e.RequestContext.RequestID
	case *events.APIGatewayProxyRequest:
		if e != nil {
			id = e.RequestContext.RequestID
		}
	case events.APIGatewayV2HTTPRequest:
		id = e.RequestContext.RequestID
	case *events.APIGatewayV2HTTPRequest:
		if e != nil {
			id = e.RequestContext.RequestID
		}
	case map[string]any:
		if rc, ok := e["requestContext"].(map[string]any); ok {
			id, _ = rc["requestId"].(string)
		}
	case json.RawMessage:
		if v, err := fastjson.ParseBytes(e); err == nil {
			id = string(v.GetStringBytes("requestContext", "requestId"))
		}
	}
	if id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return ""
}

func setNonEmpty(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
