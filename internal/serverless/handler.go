// Package serverless adapts the profile webhook to API Gateway proxy events.
package serverless

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/logging"
	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
)

// Handler serves one proxy event per invocation. Build it once per cold start.
type Handler struct {
	syncer *profilesync.Syncer
	logger *zap.Logger
}

func NewHandler(syncer *profilesync.Syncer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{syncer: syncer, logger: logger}
}

// Handle decodes the request body, runs the webhook and maps the result back.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = logging.WithRequestID(ctx, requestID(ctx, req))

	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodPost {
		return textResponse(http.StatusMethodNotAllowed, profilesync.MsgMethodNotAllowed), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			logging.FromContext(ctx, h.logger).Warn("undecodable base64 body", zap.Error(err))
			return textResponse(http.StatusBadRequest, profilesync.MsgInvalidJSON), nil
		}
		body = decoded
	}

	res := h.syncer.SyncJSON(ctx, body)
	return textResponse(res.Status, res.Body), nil
}

func requestID(ctx context.Context, req events.APIGatewayProxyRequest) string {
	if id := req.RequestContext.RequestID; id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return ""
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}
