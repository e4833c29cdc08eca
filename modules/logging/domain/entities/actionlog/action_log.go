package actionlog

import (
	"context"
	"encoding/json"
	"time"
)

// ActionLog is one audit line: who did what to which entity.
type ActionLog struct {
	ID         uint
	Actor      string
	Action     string
	EntityType string
	EntityID   *uint
	Method     string
	Path       string
	Details    json.RawMessage
	UserAgent  string
	IP         string
	CreatedAt  time.Time
}

type FindParams struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   *uint
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*ActionLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, log *ActionLog) error
}
