package persistence

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/infrastructure/persistence/models"
)

var fieldColumns = func() []string {
	fields := equipment.AllFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Column()
	}
	return out
}()

var equipmentSelectColumns = "id, " + strings.Join(fieldColumns, ", ") + ", approval_status, created_by, created_at, updated_at"

func newDBEquipment() *models.Equipment {
	return &models.Equipment{Values: make([]pgtype.Text, len(fieldColumns))}
}

// scanTargets returns the destinations matching equipmentSelectColumns.
func scanTargets(m *models.Equipment) []any {
	dest := make([]any, 0, len(m.Values)+5)
	dest = append(dest, &m.ID)
	for i := range m.Values {
		dest = append(dest, &m.Values[i])
	}
	return append(dest, &m.ApprovalStatus, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
}

func toDBEquipment(e equipment.Equipment) *models.Equipment {
	m := newDBEquipment()
	m.ID = e.ID()
	values := e.Values()
	for i, f := range equipment.AllFields() {
		m.Values[i] = toText(values, f)
	}
	m.ApprovalStatus = e.ApprovalStatus()
	m.CreatedBy = e.CreatedBy()
	m.CreatedAt = e.CreatedAt()
	m.UpdatedAt = e.UpdatedAt()
	return m
}

func toDomainEquipment(m *models.Equipment) equipment.Equipment {
	values := equipment.NewRecord()
	for i, f := range equipment.AllFields() {
		if i < len(m.Values) && m.Values[i].Valid {
			values.Set(f, m.Values[i].String)
		}
	}
	return equipment.Hydrate(m.ID, values, m.ApprovalStatus, m.CreatedBy, m.CreatedAt, m.UpdatedAt)
}

// toText maps an absent field to NULL.
func toText(r equipment.Record, f equipment.Field) pgtype.Text {
	v, ok := r.Get(f)
	return pgtype.Text{String: v, Valid: ok}
}

func toDBHistory(e history.Entry) *models.History {
	return &models.History{
		ID:          e.ID,
		EquipmentID: e.EquipmentID,
		FieldName:   e.FieldName,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		ChangedBy:   e.ChangedBy,
		ChangedAt:   e.ChangedAt,
	}
}

func toDomainHistory(m *models.History) history.Entry {
	return history.Entry{
		ID:          m.ID,
		EquipmentID: m.EquipmentID,
		FieldName:   m.FieldName,
		OldValue:    m.OldValue,
		NewValue:    m.NewValue,
		ChangedBy:   m.ChangedBy,
		ChangedAt:   m.ChangedAt,
	}
}
