package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
)

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// DefaultDecoder binds URI parameters, then either the JSON body when
// one is present or the query string. Request structs opt into each
// source with `uri`, `json` and `form` tags.
func DefaultDecoder[Req any](c *gin.Context) (Req, error) {
	var req Req

	if err := c.ShouldBindUri(&req); err != nil {
		return req, &DecodeError{Err: err}
	}

	if c.Request.ContentLength != 0 {
		if err := decodeJSONBody(c, &req); err != nil {
			return req, &DecodeError{Err: err}
		}
		return req, nil
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		return req, &DecodeError{Err: err}
	}
	return req, nil
}

// decodeJSONBody decodes a single JSON value and rejects unknown fields,
// so typos in request payloads fail loudly instead of being dropped.
func decodeJSONBody(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// NoContentEncoder writes the status line and nothing else. It lets an
// endpoint keep a typed result for its post-hooks while the client gets
// an empty body.
func NoContentEncoder[Res any](c *gin.Context, status int, _ Res) error {
	c.Status(status)
	return nil
}

// JSONEncoder marshals the response into a pooled buffer and writes it
// in one shot, so a marshal failure surfaces before any bytes reach the
// client.
func JSONEncoder[Res any](c *gin.Context, status int, res Res) error {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(res); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	c.Data(status, "application/json; charset=utf-8", buf.Bytes())
	return nil
}
