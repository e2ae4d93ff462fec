package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"http-user-service/internal/audit"
	"http-user-service/internal/usecase/auth"
	"http-user-service/pkg/validate"
)

// MockAuthUsecase is a mock implementation of auth.Usecase
type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) IssueToken(ctx context.Context, req auth.IssueTokenRequest) (*auth.IssueTokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.IssueTokenResponse), args.Error(1)
}

func setupAuthTest(t *testing.T) (*gin.Engine, *MockAuthUsecase, *recordingBus) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockAuthUsecase)
	bus := &recordingBus{}
	handler := NewAuthHandler(mockUsecase, validate.New(), bus, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/auth/token", handler.IssueToken())
	return r, mockUsecase, bus
}

func TestIssueToken(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase, bus := setupAuthTest(t)

		jsonBody, _ := json.Marshal(TokenRequest{ClientID: "reporting-service", APIKey: "super-secret"})

		mockUsecase.On("IssueToken", mock.Anything, auth.IssueTokenRequest{ClientID: "reporting-service", APIKey: "super-secret"}).
			Return(&auth.IssueTokenResponse{AccessToken: "signed.jwt.here", TokenType: "Bearer", ExpiresIn: 1800}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/token", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed.jwt.here", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(1800), resp.ExpiresIn)

		require.Len(t, bus.entries, 1)
		assert.Equal(t, audit.ActionTokenIssue, bus.entries[0].Action)
		assert.Zero(t, bus.entries[0].UserID)
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		r, mockUsecase, bus := setupAuthTest(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/token", bytes.NewBufferString(`{"client_id":"reporting-service"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "invalid_request", resp.Error)
		assert.Contains(t, resp.Message, "APIKey is required")

		mockUsecase.AssertNotCalled(t, "IssueToken")
		assert.Empty(t, bus.entries)
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		r, mockUsecase, bus := setupAuthTest(t)

		jsonBody, _ := json.Marshal(TokenRequest{ClientID: "reporting-service", APIKey: "wrong"})
		mockUsecase.On("IssueToken", mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidCredentials)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/token", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "unauthorized", resp.Error)
		assert.Equal(t, "invalid client credentials", resp.Message)
		assert.Empty(t, bus.entries)
	})
}
