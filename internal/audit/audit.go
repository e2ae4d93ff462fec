// Package audit records completed mutations on a background trail.
// Handlers publish entries through a post-hook; a Recorder consumes
// them off the event bus and writes them on the worker pool, so the
// request path never waits on audit I/O.
package audit

import (
	"context"
	"time"

	"http-user-service/pkg/logger"
	"http-user-service/pkg/pipeline"
)

// Actions recorded on the trail.
const (
	ActionUserCreate = "user.create"
	ActionUserUpdate = "user.update"
	ActionUserDelete = "user.delete"
	ActionTokenIssue = "auth.token_issue"
)

// Entry is one audit record.
type Entry struct {
	Action    string
	UserID    int64
	RequestID string
	At        time.Time
}

// Publisher is the bus surface the hook needs. Satisfied by
// *eventbus.Bus[Entry].
type Publisher interface {
	Publish(Entry) int
}

// Hook returns a post-hook that publishes an Entry for the completed
// operation. extract pulls the affected user ID from the
// request/response pair; pass nil when there is none. Publishing never
// fails the request.
func Hook[Req, Res any](bus Publisher, action string, extract func(Req, Res) int64) pipeline.PostHook[Req, Res] {
	return func(ctx context.Context, req Req, res Res) error {
		var userID int64
		if extract != nil {
			userID = extract(req, res)
		}
		bus.Publish(Entry{
			Action:    action,
			UserID:    userID,
			RequestID: logger.GetRequestID(ctx),
			At:        time.Now(),
		})
		return nil
	}
}
