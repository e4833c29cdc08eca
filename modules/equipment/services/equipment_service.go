package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/domain/inventory"
	"github.com/iota-uz/inventory/pkg/composables"
)

type EquipmentService struct {
	repo        equipment.Repository
	historyRepo history.Repository
	recorder    *HistoryRecorder
	auditor     Auditor
	inTx        func(ctx context.Context, fn func(context.Context) error) error
}

func NewEquipmentService(
	repo equipment.Repository,
	historyRepo history.Repository,
	recorder *HistoryRecorder,
	auditor Auditor,
) *EquipmentService {
	return &EquipmentService{
		repo:        repo,
		historyRepo: historyRepo,
		recorder:    recorder,
		auditor:     auditor,
		inTx:        composables.InTx,
	}
}

func (s *EquipmentService) GetByID(ctx context.Context, id uint) (equipment.Equipment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EquipmentService) GetPaginated(ctx context.Context, params *equipment.FindParams) ([]equipment.Equipment, int64, error) {
	if params == nil {
		params = &equipment.FindParams{}
	}
	items, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create adds one record. Without an explicit status the status is derived from the current user.
func (s *EquipmentService) Create(ctx context.Context, actor string, dto *equipment.CreateDTO) (equipment.Equipment, error) {
	if strings.TrimSpace(actor) == "" {
		return equipment.Equipment{}, ErrActorRequired
	}
	if errs, ok := dto.Ok(ctx); !ok {
		return equipment.Equipment{}, &ValidationError{Fields: errs}
	}
	values := dto.ToRecord()
	if !values.Has(equipment.FieldStatus) {
		status, _ := inventory.DeriveStatus(values.Value(equipment.FieldUsuarioAtual), "")
		values.Set(equipment.FieldStatus, string(status))
	}

	var created equipment.Equipment
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBySerial(txCtx, values.Serial()); err == nil {
			return equipment.ErrDuplicateSerial
		} else if !errors.Is(err, equipment.ErrNotFound) {
			return err
		}
		var err error
		created, err = s.repo.Create(txCtx, equipment.New(values, equipment.WithCreatedBy(actor)))
		if err != nil {
			return err
		}
		return s.recorder.Record(txCtx, created.ID(), actor, []equipment.FieldChange{
			equipment.CreationChange(created.ID(), actor, created.Serial()),
		})
	})
	if err != nil {
		return equipment.Equipment{}, err
	}
	return created, nil
}

// Update applies a partial edit and records one history row per changed field.
// Changing the current user without an explicit status re-derives the status.
func (s *EquipmentService) Update(ctx context.Context, actor string, id uint, dto *equipment.UpdateDTO) (equipment.Equipment, error) {
	if strings.TrimSpace(actor) == "" {
		return equipment.Equipment{}, ErrActorRequired
	}
	if errs, ok := dto.Ok(ctx); !ok {
		return equipment.Equipment{}, &ValidationError{Fields: errs}
	}
	next := dto.ToRecord()

	var updated equipment.Equipment
	err := s.inTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if next.Has(equipment.FieldUsuarioAtual) && !next.Has(equipment.FieldStatus) {
			status, derived := inventory.DeriveStatus(next.Value(equipment.FieldUsuarioAtual), existing.Status())
			next.Set(equipment.FieldStatus, string(status))
			if derived && status == equipment.StatusEstoque {
				next.Set(equipment.FieldEmailColaborador, "")
			}
		}

		changes := equipment.Diff(existing.ID(), actor, existing.Values(), next)
		if len(changes) == 0 {
			updated = existing
			return nil
		}
		changed := equipment.NewRecord()
		for _, c := range changes {
			changed.Set(c.Field, c.NewValue)
		}
		updated, err = s.repo.Update(txCtx, id, changed)
		if err != nil {
			return err
		}
		return s.recorder.Record(txCtx, id, actor, changes)
	})
	if err != nil {
		return equipment.Equipment{}, err
	}
	return updated, nil
}

// Delete removes the record; its history goes with it.
func (s *EquipmentService) Delete(ctx context.Context, actor string, id uint) error {
	if strings.TrimSpace(actor) == "" {
		return ErrActorRequired
	}
	return s.inTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.auditor.Audit(txCtx, actor, "equipment.delete", entityEquipment, &id, map[string]string{
			"serial": existing.Serial(),
		})
	})
}

func (s *EquipmentService) History(ctx context.Context, id uint, limit, offset int) ([]history.Entry, int64, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	params := &history.FindParams{EquipmentID: id, Limit: limit, Offset: offset}
	entries, err := s.historyRepo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.historyRepo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
