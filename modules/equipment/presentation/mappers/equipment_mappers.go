package mappers

import (
	"time"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/importsettings"
	"github.com/iota-uz/inventory/modules/equipment/presentation/viewmodels"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func EquipmentToViewModel(e equipment.Equipment) *viewmodels.Equipment {
	return &viewmodels.Equipment{
		ID:             e.ID(),
		Serial:         e.Serial(),
		Status:         e.Status().String(),
		Fields:         e.Values().Map(),
		ApprovalStatus: e.ApprovalStatus(),
		CreatedBy:      e.CreatedBy(),
		CreatedAt:      formatTime(e.CreatedAt()),
		UpdatedAt:      formatTime(e.UpdatedAt()),
	}
}

func EquipmentsToViewModels(items []equipment.Equipment) []*viewmodels.Equipment {
	out := make([]*viewmodels.Equipment, 0, len(items))
	for _, e := range items {
		out = append(out, EquipmentToViewModel(e))
	}
	return out
}

func HistoryToViewModels(entries []history.Entry) []*viewmodels.HistoryEntry {
	out := make([]*viewmodels.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &viewmodels.HistoryEntry{
			ID:        e.ID,
			FieldName: e.FieldName,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			ChangedBy: e.ChangedBy,
			ChangedAt: formatTime(e.ChangedAt),
		})
	}
	return out
}

func ImportStatusToViewModel(s importsettings.Settings) *viewmodels.ImportStatus {
	return &viewmodels.ImportStatus{
		HasInitialConsolidationRun:  s.HasInitialConsolidationRun(),
		LastAbsoluteUpdateTimestamp: s.LastAbsoluteUpdateTimestamp(),
	}
}
