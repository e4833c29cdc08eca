package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Equipment struct {
	ID uint
	// Values holds one nullable column per equipment field, in field declaration order.
	Values         []pgtype.Text
	ApprovalStatus string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type History struct {
	ID          uint
	EquipmentID uint
	FieldName   string
	OldValue    string
	NewValue    string
	ChangedBy   string
	ChangedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}
