package inventory

import (
	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

type UpsertKind int

const (
	UpsertInsert UpsertKind = iota + 1
	UpsertUpdate
)

func (k UpsertKind) String() string {
	switch k {
	case UpsertInsert:
		return "insert"
	case UpsertUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// UpsertPlan is one pending write.
// For inserts Fields is the full record; for updates it holds only the fields that change.
type UpsertPlan struct {
	Kind           UpsertKind
	ID             uint
	MergeKey       string
	Fields         equipment.Record
	ApprovalStatus string
	CreatedBy      string
	// Changes carries the history entries for the write. Insert changes have EntityID 0
	// until the row id is known.
	Changes []equipment.FieldChange
}

// Plan is the outcome of reconciling a dataset against persisted equipment.
type Plan struct {
	Upserts []UpsertPlan
	// Unchanged counts matched records with nothing to write.
	Unchanged int
	// Incoming counts distinct merge keys in the input.
	Incoming int
}

func (p Plan) Inserts() int {
	return p.count(UpsertInsert)
}

func (p Plan) Updates() int {
	return p.count(UpsertUpdate)
}

func (p Plan) count(k UpsertKind) int {
	n := 0
	for _, u := range p.Upserts {
		if u.Kind == k {
			n++
		}
	}
	return n
}

// HistoryEntries is the number of field changes the plan records.
func (p Plan) HistoryEntries() int {
	n := 0
	for _, u := range p.Upserts {
		n += len(u.Changes)
	}
	return n
}

func (p Plan) Empty() bool {
	return len(p.Upserts) == 0
}

// Reconcile computes the writes that bring persisted in line with incoming.
// Records absent from incoming are left alone. Running Reconcile again on the result of
// applying its plan yields an empty plan.
func Reconcile(incoming []equipment.Record, persisted []equipment.Equipment, actor string) Plan {
	d := newDedupe(len(incoming))
	for _, r := range incoming {
		d.add(r)
	}
	records := d.records()

	byKey := make(map[string]equipment.Equipment, len(persisted))
	for _, e := range persisted {
		key := equipment.MergeKey(e.Serial())
		if key == "" {
			continue
		}
		byKey[key] = e
	}

	plan := Plan{Incoming: len(records)}
	for _, rec := range records {
		key := equipment.MergeKey(rec.Serial())
		existing, ok := byKey[key]
		if !ok {
			plan.Upserts = append(plan.Upserts, planInsert(key, rec, actor))
			continue
		}
		up, changed := planUpdate(key, rec, existing, actor)
		if !changed {
			plan.Unchanged++
			continue
		}
		plan.Upserts = append(plan.Upserts, up)
	}
	return plan
}

func planInsert(key string, rec equipment.Record, actor string) UpsertPlan {
	fields := rec.Clone()
	fields.Delete(equipment.FieldStatus)
	applyStatus(&fields, "")
	return UpsertPlan{
		Kind:           UpsertInsert,
		MergeKey:       key,
		Fields:         fields,
		ApprovalStatus: equipment.ApprovalApproved,
		CreatedBy:      actor,
		Changes:        []equipment.FieldChange{equipment.CreationChange(0, actor, fields.Serial())},
	}
}

func planUpdate(key string, rec equipment.Record, existing equipment.Equipment, actor string) (UpsertPlan, bool) {
	current := existing.Values()

	staged := rec.Clone()
	// The persisted serial is the identity; a differently spaced or cased incoming serial is not a change.
	staged.Delete(equipment.FieldSerial)
	staged.Delete(equipment.FieldStatus)

	occupant := current.Value(equipment.FieldUsuarioAtual)
	if v, ok := staged.Get(equipment.FieldUsuarioAtual); ok {
		occupant = v
	}
	status, derived := DeriveStatus(occupant, existing.Status())
	staged.Set(equipment.FieldStatus, string(status))
	if derived && status == equipment.StatusEstoque {
		staged.Set(equipment.FieldEmailColaborador, "")
	}

	changes := equipment.Diff(existing.ID(), actor, current, staged)
	if len(changes) == 0 {
		return UpsertPlan{}, false
	}
	fields := equipment.NewRecord()
	for _, c := range changes {
		fields.Set(c.Field, c.NewValue)
	}
	return UpsertPlan{
		Kind:           UpsertUpdate,
		ID:             existing.ID(),
		MergeKey:       key,
		Fields:         fields,
		ApprovalStatus: existing.ApprovalStatus(),
		CreatedBy:      existing.CreatedBy(),
		Changes:        changes,
	}, true
}
