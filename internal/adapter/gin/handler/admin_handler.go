package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/internal/audit"
	"http-user-service/pkg/pipeline"
)

// AdminHandler exposes operational endpoints for authenticated clients.
type AdminHandler struct {
	rec *audit.Recorder
	log *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(rec *audit.Recorder, log *zap.Logger) *AdminHandler {
	return &AdminHandler{rec: rec, log: log}
}

// AuditStats handles GET /v1/admin/audit/stats.
func (h *AdminHandler) AuditStats() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, _ struct{}) (audit.Stats, error) {
			return h.rec.Stats(), nil
		},
		pipeline.WithLogger[struct{}, audit.Stats](h.log),
	)
}
