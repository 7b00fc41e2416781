// Package content is the boundary to externally supplied session
// content. The engine consumes the generated items as opaque data;
// everything AI-specific stays on this side of the interface.
package content

import (
	"context"

	"studyhall/internal/model"
)

// Adapter generates session content up front and summarizes captured
// whiteboard notes after a session closes. Generation failures wrap
// engine.ErrContentUnavailable and run before the session is
// registered, so a failure never leaves a half-built session behind.
type Adapter interface {
	Generate(ctx context.Context, typ model.SessionType, cfg model.SessionConfig) ([]model.ContentItem, error)
	Summarize(ctx context.Context, items []model.ContentItem) (string, error)
}
