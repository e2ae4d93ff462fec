package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"http-user-service/pkg/errs"
	"http-user-service/pkg/token"
)

// ErrInvalidCredentials is returned when the presented API key does not
// match the configured one. The message deliberately does not say which
// part of the credentials was wrong.
var ErrInvalidCredentials = errs.NewUnauthorizedError("invalid client credentials")

// Usecase defines the interface for token issuance.
type Usecase interface {
	IssueToken(ctx context.Context, in IssueTokenRequest) (*IssueTokenResponse, error)
}

type usecase struct {
	apiKeyHash []byte
	tokens     *token.Service
	log        *zap.Logger
}

// New creates an auth usecase. apiKeyHash is the bcrypt hash of the API
// key clients exchange for bearer tokens.
func New(apiKeyHash string, tokens *token.Service, log *zap.Logger) Usecase {
	return &usecase{
		apiKeyHash: []byte(strings.TrimSpace(apiKeyHash)),
		tokens:     tokens,
		log:        log,
	}
}

func (u *usecase) IssueToken(ctx context.Context, in IssueTokenRequest) (*IssueTokenResponse, error) {
	clientID := strings.TrimSpace(in.ClientID)
	apiKey := strings.TrimSpace(in.APIKey)
	if clientID == "" || apiKey == "" {
		return nil, ErrInvalidCredentials
	}
	if len(u.apiKeyHash) == 0 {
		return nil, errs.NewInternalError("api key is not configured", nil)
	}

	if err := bcrypt.CompareHashAndPassword(u.apiKeyHash, []byte(apiKey)); err != nil {
		u.log.Warn("rejected token request", zap.String("client_id", clientID))
		return nil, ErrInvalidCredentials
	}

	signed, err := u.tokens.Sign(clientID)
	if err != nil {
		return nil, errs.NewInternalError("failed to sign token", err)
	}

	u.log.Info("issued token", zap.String("client_id", clientID))
	return &IssueTokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.tokens.TTL().Seconds()),
	}, nil
}
