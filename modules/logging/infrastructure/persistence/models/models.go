package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type ActionLog struct {
	ID         uint
	Actor      string
	Action     string
	EntityType string
	EntityID   pgtype.Int8
	Method     string
	Path       string
	Details    []byte
	UserAgent  string
	IP         string
	CreatedAt  time.Time
}
