package services

import (
	"context"
	"time"

	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
)

// Auditor writes audit lines. The logging module's LogsService implements it.
type Auditor interface {
	Audit(ctx context.Context, actor, action, entityType string, entityID *uint, details any) error
}

const entityEquipment = "equipment"

// HistoryRecorder persists field changes in the caller's transaction, so a failure
// rolls back the mutation that produced them.
type HistoryRecorder struct {
	repo    history.Repository
	auditor Auditor
	now     func() time.Time
}

func NewHistoryRecorder(repo history.Repository, auditor Auditor) *HistoryRecorder {
	return &HistoryRecorder{repo: repo, auditor: auditor, now: time.Now}
}

// Record writes one history row per change and one audit line. Empty changes are a no-op.
func (r *HistoryRecorder) Record(ctx context.Context, entityID uint, actor string, changes []equipment.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	for i := range changes {
		changes[i].EntityID = entityID
		changes[i].ChangedBy = actor
	}
	if err := r.write(ctx, changes); err != nil {
		return err
	}
	id := entityID
	return r.auditor.Audit(ctx, actor, "equipment.change", entityEquipment, &id, changeDetails(changes))
}

// changeDetails lists the changed fields and the JSON patch from the old to the new values.
func changeDetails(changes []equipment.FieldChange) map[string]any {
	fields := make([]string, 0, len(changes))
	before := make(map[string]string, len(changes))
	after := make(map[string]string, len(changes))
	for _, c := range changes {
		name := c.FieldName()
		fields = append(fields, name)
		if c.Kind != equipment.ChangeCreate {
			before[name] = c.OldValue
		}
		after[name] = c.NewValue
	}
	details := map[string]any{"fields": fields}
	if patch, err := jsondiff.Compare(before, after); err == nil {
		details["patch"] = patch
	}
	return details
}

// RecordRun writes the audit line summarising a whole import run.
func (r *HistoryRecorder) RecordRun(ctx context.Context, actor, action string, details any) error {
	return r.auditor.Audit(ctx, actor, action, entityEquipment, nil, details)
}

func (r *HistoryRecorder) write(ctx context.Context, changes []equipment.FieldChange) error {
	at := r.now().UTC()
	entries := make([]history.Entry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, history.FromChange(c, at))
	}
	_, err := r.repo.CreateMany(ctx, entries)
	return err
}
