// Package lambdalog turns the process-wide slog logger into a JSON line
// emitter suitable for AWS Lambda and other short-lived function runtimes.
//
// A typical function calls Setup once per invocation, or wraps its handler
// with Wrap which does it automatically:
//
//	func handler(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
//		lambdalog.Info("handling request", "path", ev.Path)
//		...
//	}
//
//	func main() {
//		lambda.Start(lambdalog.Wrap(handler))
//	}
//
// Every record is written as a single JSON object carrying at least the
// keys level, timestamp, location and message, followed by the static
// fields given to Setup and the attributes of the call itself. Call
// attributes win over static fields with the same key.
package lambdalog
