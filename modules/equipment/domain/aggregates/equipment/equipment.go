package equipment

import (
	"time"
)

type Option func(e *Equipment)

func WithID(id uint) Option {
	return func(e *Equipment) { e.id = id }
}

func WithApprovalStatus(s string) Option {
	return func(e *Equipment) { e.approvalStatus = s }
}

func WithCreatedBy(username string) Option {
	return func(e *Equipment) { e.createdBy = username }
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(e *Equipment) {
		e.createdAt = createdAt
		e.updatedAt = updatedAt
	}
}

// Equipment is a persisted inventory item. Its attributes live in a Record so imports and
// single-record edits share one representation.
type Equipment struct {
	id             uint
	values         Record
	approvalStatus string
	createdBy      string
	createdAt      time.Time
	updatedAt      time.Time
}

func New(values Record, opts ...Option) Equipment {
	e := Equipment{
		values:         values.Clone(),
		approvalStatus: ApprovalApproved,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func Hydrate(
	id uint,
	values Record,
	approvalStatus string,
	createdBy string,
	createdAt time.Time,
	updatedAt time.Time,
) Equipment {
	return Equipment{
		id:             id,
		values:         values.Clone(),
		approvalStatus: approvalStatus,
		createdBy:      createdBy,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (e Equipment) ID() uint               { return e.id }
func (e Equipment) Serial() string         { return e.values.Serial() }
func (e Equipment) Status() Status         { return Status(e.values.Value(FieldStatus)) }
func (e Equipment) Value(f Field) string   { return e.values.Value(f) }
func (e Equipment) Values() Record         { return e.values.Clone() }
func (e Equipment) ApprovalStatus() string { return e.approvalStatus }
func (e Equipment) CreatedBy() string      { return e.createdBy }
func (e Equipment) CreatedAt() time.Time   { return e.createdAt }
func (e Equipment) UpdatedAt() time.Time   { return e.updatedAt }
func (e Equipment) IsZero() bool           { return e.id == 0 && e.values.Len() == 0 }

// Apply returns a copy with changes overlaid.
func (e Equipment) Apply(changes Record) Equipment {
	next := e
	next.values = e.values.Clone()
	next.values.Overlay(changes)
	return next
}
