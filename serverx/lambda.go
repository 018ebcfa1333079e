package serverx

import (
	"context"
	"encoding/json"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/toolx"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Invocation is the Lambda event: the tool to run and its arguments
type Invocation struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// LambdaHandler returns the function handler for reg. Tool failures are
// returned as envelopes, so the invocation itself always succeeds.
func LambdaHandler(reg *toolx.ToolRegistry) func(ctx context.Context, event Invocation) (toolx.Envelope, error) {
	return func(ctx context.Context, event Invocation) (toolx.Envelope, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			logx.Debug("Lambda request %s calls %s", lc.AwsRequestID, event.Tool)
		}
		return reg.Call(ctx, event.Tool, event.Arguments), nil
	}
}

// StartLambda hands control to the Lambda runtime. It does not return.
func StartLambda(reg *toolx.ToolRegistry) {
	logx.Info("Starting Lambda tool host with %d tools", reg.Len())
	lambda.Start(LambdaHandler(reg))
}
