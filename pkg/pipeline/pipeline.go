// Package pipeline builds typed gin endpoints from five ordered stages:
// decode, pre-hooks, the core handler, post-hooks, and encode. The first
// failing stage short-circuits the run and is translated by a single
// error mapper, so transport concerns never leak into business code.
package pipeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler is the core business call of an endpoint. It is the only
// stage that may touch usecases or data access.
type Handler[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Decoder converts the transport request into a typed value
type Decoder[Req any] func(c *gin.Context) (Req, error)

// Encoder serializes the typed response with the endpoint's success
// status. It runs exactly once per successful request.
type Encoder[Res any] func(c *gin.Context, status int, res Res) error

// PreHook runs against the decoded request before the handler.
// Hooks run in registration order; the first failure stops the run
// before the handler is called.
type PreHook[Req any] func(ctx context.Context, req Req) error

// PostHook observes the request and response after the handler and
// before encoding, so a failure can still change the outcome.
type PostHook[Req, Res any] func(ctx context.Context, req Req, res Res) error

// ErrorMapper translates any stage failure into the external response
type ErrorMapper func(c *gin.Context, err error)

// Option configures an endpoint
type Option[Req, Res any] func(*endpoint[Req, Res])

type endpoint[Req, Res any] struct {
	handler Handler[Req, Res]
	decoder Decoder[Req]
	encoder Encoder[Res]
	pre     []PreHook[Req]
	post    []PostHook[Req, Res]
	mapErr  ErrorMapper
	status  int
	log     *zap.Logger
}

// WithDecoder replaces the default decoder
func WithDecoder[Req, Res any](d Decoder[Req]) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.decoder = d }
}

// WithEncoder replaces the default JSON encoder
func WithEncoder[Req, Res any](e Encoder[Res]) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.encoder = e }
}

// WithPreHooks appends pre-hooks in the given order
func WithPreHooks[Req, Res any](hooks ...PreHook[Req]) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.pre = append(ep.pre, hooks...) }
}

// WithPostHooks appends post-hooks in the given order
func WithPostHooks[Req, Res any](hooks ...PostHook[Req, Res]) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.post = append(ep.post, hooks...) }
}

// WithErrorMapper replaces the default error mapper
func WithErrorMapper[Req, Res any](m ErrorMapper) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.mapErr = m }
}

// WithStatus sets the success status code, 200 by default
func WithStatus[Req, Res any](status int) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.status = status }
}

// WithLogger sets the logger used for unmapped and post-write failures
func WithLogger[Req, Res any](log *zap.Logger) Option[Req, Res] {
	return func(ep *endpoint[Req, Res]) { ep.log = log }
}

// Handle assembles an endpoint around h and returns it as a
// gin.HandlerFunc. Stages run in order and the first failure is routed
// to the error mapper; nothing after a failure executes.
func Handle[Req, Res any](h Handler[Req, Res], opts ...Option[Req, Res]) gin.HandlerFunc {
	ep := &endpoint[Req, Res]{
		handler: h,
		decoder: DefaultDecoder[Req],
		encoder: JSONEncoder[Res],
		status:  http.StatusOK,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ep)
	}
	if ep.mapErr == nil {
		ep.mapErr = NewErrorMapper(ep.log)
	}
	return ep.run
}

func (ep *endpoint[Req, Res]) run(c *gin.Context) {
	req, err := ep.decoder(c)
	if err != nil {
		// Any decoder failure is a malformed request, custom
		// decoders included.
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			err = &DecodeError{Err: err}
		}
		ep.mapErr(c, err)
		return
	}

	ctx := c.Request.Context()

	for _, hook := range ep.pre {
		if err := hook(ctx, req); err != nil {
			ep.mapErr(c, err)
			return
		}
	}

	res, err := ep.handler(ctx, req)
	if err != nil {
		ep.mapErr(c, err)
		return
	}

	// Post-hooks run before any bytes are written, so their failure
	// can still produce an error response.
	for _, hook := range ep.post {
		if err := hook(ctx, req, res); err != nil {
			ep.mapErr(c, err)
			return
		}
	}

	if err := ep.encoder(c, ep.status, res); err != nil {
		if c.Writer.Written() {
			ep.log.Error("encode failed after response was written", zap.Error(err))
			return
		}
		ep.mapErr(c, &EncodeError{Err: err})
	}
}
