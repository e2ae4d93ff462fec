package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/internal/audit"
	"http-user-service/internal/usecase/auth"
	"http-user-service/pkg/pipeline"
	"http-user-service/pkg/validate"
)

// AuthHandler issues bearer tokens for the authenticated endpoints.
type AuthHandler struct {
	uc       auth.Usecase
	validate *validate.Validator
	bus      audit.Publisher
	log      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(uc auth.Usecase, v *validate.Validator, bus audit.Publisher, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, validate: v, bus: bus, log: log}
}

// IssueToken handles POST /v1/auth/token.
func (h *AuthHandler) IssueToken() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req TokenRequest) (TokenResponse, error) {
			out, err := h.uc.IssueToken(ctx, auth.IssueTokenRequest{ClientID: req.ClientID, APIKey: req.APIKey})
			if err != nil {
				return TokenResponse{}, err
			}
			return TokenResponse{
				AccessToken: out.AccessToken,
				TokenType:   out.TokenType,
				ExpiresIn:   out.ExpiresIn,
			}, nil
		},
		pipeline.WithPreHooks[TokenRequest, TokenResponse](validate.Hook[TokenRequest](h.validate)),
		pipeline.WithPostHooks[TokenRequest, TokenResponse](
			audit.Hook[TokenRequest, TokenResponse](h.bus, audit.ActionTokenIssue, nil),
		),
		pipeline.WithLogger[TokenRequest, TokenResponse](h.log),
	)
}
