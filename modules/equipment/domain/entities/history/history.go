package history

import (
	"context"
	"time"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

// Entry is one immutable equipment_history row.
type Entry struct {
	ID          uint
	EquipmentID uint
	FieldName   string
	OldValue    string
	NewValue    string
	ChangedBy   string
	ChangedAt   time.Time
}

func FromChange(c equipment.FieldChange, at time.Time) Entry {
	return Entry{
		EquipmentID: c.EntityID,
		FieldName:   c.FieldName(),
		OldValue:    c.OldValue,
		NewValue:    c.NewValue,
		ChangedBy:   c.ChangedBy,
		ChangedAt:   at,
	}
}

type FindParams struct {
	EquipmentID uint
	Limit       int
	Offset      int
}

type Repository interface {
	CreateMany(ctx context.Context, entries []Entry) (int64, error)
	List(ctx context.Context, params *FindParams) ([]Entry, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
}
