package handler

import (
	user "http-user-service/internal/usecase/user"
)

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserRequest is the body of PUT /v1/users/:id. The ID comes from
// the path only; empty fields leave the stored value unchanged.
type UpdateUserRequest struct {
	ID    int64  `uri:"id" json:"-" validate:"required,gt=0"`
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// IDRequest captures the :id path parameter for single-user endpoints.
type IDRequest struct {
	ID int64 `uri:"id" validate:"required,gt=0"`
}

// ListUsersRequest is the query surface of GET /v1/users. Out-of-range
// page and limit values are clamped by the usecase rather than
// rejected here.
type ListUsersRequest struct {
	Query string `form:"query"`
	Page  int64  `form:"page"`
	Limit int64  `form:"limit"`
}

// TokenRequest is the body of POST /v1/auth/token.
type TokenRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	APIKey   string `json:"api_key" validate:"required"`
}

// UserResponse is the external representation of a user.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IDResponse acknowledges a mutation with the affected user ID.
type IDResponse struct {
	ID int64 `json:"id"`
}

// ListUsersResponse is one page of users plus pagination metadata.
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination describes the page a list response was cut from.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// TokenResponse is the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func toListUsersResponse(out *user.ListUsersResponse) ListUsersResponse {
	resp := ListUsersResponse{Users: make([]UserResponse, 0, len(out.Users))}
	for _, u := range out.Users {
		resp.Users = append(resp.Users, UserResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	if out.Pagination != nil {
		resp.Pagination = &Pagination{
			Total:      out.Pagination.Total,
			Page:       out.Pagination.Page,
			Limit:      out.Pagination.Limit,
			TotalPages: out.Pagination.TotalPages,
		}
	}
	return resp
}
