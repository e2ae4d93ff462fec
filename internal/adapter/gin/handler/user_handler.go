package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/internal/audit"
	user "http-user-service/internal/usecase/user"
	"http-user-service/pkg/pipeline"
	"http-user-service/pkg/validate"
)

// UserUsecase is the slice of the user business layer the endpoints
// call. The handler accepts the interface so tests can substitute it.
type UserUsecase interface {
	CreateUser(ctx context.Context, in user.CreateUserRequest) (*user.CreateUserResponse, error)
	GetUser(ctx context.Context, in user.GetUserRequest) (*user.GetUserResponse, error)
	UpdateUser(ctx context.Context, in user.UpdateUserRequest) (*user.UpdateUserResponse, error)
	DeleteUser(ctx context.Context, in user.DeleteUserRequest) (*user.DeleteUserResponse, error)
	ListUsers(ctx context.Context, in user.ListUsersRequest) (*user.ListUsersResponse, error)
}

// UserHandler assembles the user endpoints. Each endpoint is a typed
// pipeline: decode, validate, usecase call, audit, encode, with every
// failure routed through the shared error mapper.
type UserHandler struct {
	uc       UserUsecase
	validate *validate.Validator
	bus      audit.Publisher
	log      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(uc UserUsecase, v *validate.Validator, bus audit.Publisher, log *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, validate: v, bus: bus, log: log}
}

// CreateUser handles POST /v1/users.
func (h *UserHandler) CreateUser() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req CreateUserRequest) (IDResponse, error) {
			out, err := h.uc.CreateUser(ctx, user.CreateUserRequest{Name: req.Name, Email: req.Email})
			if err != nil {
				return IDResponse{}, err
			}
			return IDResponse{ID: out.ID}, nil
		},
		pipeline.WithPreHooks[CreateUserRequest, IDResponse](validate.Hook[CreateUserRequest](h.validate)),
		pipeline.WithPostHooks[CreateUserRequest, IDResponse](
			audit.Hook(h.bus, audit.ActionUserCreate, func(_ CreateUserRequest, res IDResponse) int64 { return res.ID }),
		),
		pipeline.WithStatus[CreateUserRequest, IDResponse](http.StatusCreated),
		pipeline.WithLogger[CreateUserRequest, IDResponse](h.log),
	)
}

// GetUser handles GET /v1/users/:id.
func (h *UserHandler) GetUser() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req IDRequest) (UserResponse, error) {
			out, err := h.uc.GetUser(ctx, user.GetUserRequest{ID: req.ID})
			if err != nil {
				return UserResponse{}, err
			}
			return UserResponse{ID: out.ID, Name: out.Name, Email: out.Email}, nil
		},
		pipeline.WithPreHooks[IDRequest, UserResponse](validate.Hook[IDRequest](h.validate)),
		pipeline.WithLogger[IDRequest, UserResponse](h.log),
	)
}

// UpdateUser handles PUT /v1/users/:id.
func (h *UserHandler) UpdateUser() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req UpdateUserRequest) (IDResponse, error) {
			out, err := h.uc.UpdateUser(ctx, user.UpdateUserRequest{ID: req.ID, Name: req.Name, Email: req.Email})
			if err != nil {
				return IDResponse{}, err
			}
			return IDResponse{ID: out.ID}, nil
		},
		pipeline.WithPreHooks[UpdateUserRequest, IDResponse](validate.Hook[UpdateUserRequest](h.validate)),
		pipeline.WithPostHooks[UpdateUserRequest, IDResponse](
			audit.Hook(h.bus, audit.ActionUserUpdate, func(_ UpdateUserRequest, res IDResponse) int64 { return res.ID }),
		),
		pipeline.WithLogger[UpdateUserRequest, IDResponse](h.log),
	)
}

// DeleteUser handles DELETE /v1/users/:id. The handler still produces
// the deleted ID so the audit hook can record it; the client gets 204
// with an empty body.
func (h *UserHandler) DeleteUser() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req IDRequest) (IDResponse, error) {
			out, err := h.uc.DeleteUser(ctx, user.DeleteUserRequest{ID: req.ID})
			if err != nil {
				return IDResponse{}, err
			}
			return IDResponse{ID: out.ID}, nil
		},
		pipeline.WithPreHooks[IDRequest, IDResponse](validate.Hook[IDRequest](h.validate)),
		pipeline.WithPostHooks[IDRequest, IDResponse](
			audit.Hook(h.bus, audit.ActionUserDelete, func(_ IDRequest, res IDResponse) int64 { return res.ID }),
		),
		pipeline.WithEncoder[IDRequest, IDResponse](pipeline.NoContentEncoder[IDResponse]),
		pipeline.WithStatus[IDRequest, IDResponse](http.StatusNoContent),
		pipeline.WithLogger[IDRequest, IDResponse](h.log),
	)
}

// ListUsers handles GET /v1/users.
func (h *UserHandler) ListUsers() gin.HandlerFunc {
	return pipeline.Handle(
		func(ctx context.Context, req ListUsersRequest) (ListUsersResponse, error) {
			out, err := h.uc.ListUsers(ctx, user.ListUsersRequest{Query: req.Query, Page: req.Page, Limit: req.Limit})
			if err != nil {
				return ListUsersResponse{}, err
			}
			return toListUsersResponse(out), nil
		},
		pipeline.WithLogger[ListUsersRequest, ListUsersResponse](h.log),
	)
}
