package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/studylab-api/pkg/middleware/requestid"
)

// requestField ties a service log line to the HTTP request log line.
func requestField(ctx context.Context) zap.Field {
	return zap.String("request_id", requestid.FromContext(ctx))
}
