package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/importsettings"
	"github.com/iota-uz/inventory/pkg/constants"
	"github.com/iota-uz/inventory/pkg/importlock"
	"github.com/iota-uz/inventory/pkg/outbox"
	"github.com/iota-uz/inventory/pkg/repo"
)

type stubTx struct{}

func (stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}
func (stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}
func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func txContext() context.Context {
	return context.WithValue(context.Background(), constants.TxKey, stubTx{})
}

type memEquipmentRepo struct {
	mu      sync.Mutex
	nextID  uint
	items   map[uint]equipment.Equipment
	failOn  string
	updates int
}

func newMemEquipmentRepo(seed ...equipment.Record) *memEquipmentRepo {
	r := &memEquipmentRepo{items: map[uint]equipment.Equipment{}}
	for _, rec := range seed {
		r.nextID++
		r.items[r.nextID] = equipment.Hydrate(r.nextID, rec, equipment.ApprovalApproved, "seed", time.Time{}, time.Time{})
	}
	return r
}

func (r *memEquipmentRepo) sorted() []equipment.Equipment {
	out := make([]equipment.Equipment, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *memEquipmentRepo) Count(ctx context.Context, params *equipment.FindParams) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *memEquipmentRepo) GetPaginated(ctx context.Context, params *equipment.FindParams) ([]equipment.Equipment, error) {
	return r.sorted(), nil
}

func (r *memEquipmentRepo) GetAll(ctx context.Context) ([]equipment.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), nil
}

func (r *memEquipmentRepo) GetByID(ctx context.Context, id uint) (equipment.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	return e, nil
}

func (r *memEquipmentRepo) GetBySerial(ctx context.Context, serial string) (equipment.Equipment, error) {
	for _, e := range r.items {
		if equipment.MergeKey(e.Serial()) == equipment.MergeKey(serial) {
			return e, nil
		}
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}

func (r *memEquipmentRepo) Create(ctx context.Context, e equipment.Equipment) (equipment.Equipment, error) {
	if r.failOn == "create" {
		return equipment.Equipment{}, errors.New("boom")
	}
	if _, err := r.GetBySerial(ctx, e.Serial()); err == nil {
		return equipment.Equipment{}, equipment.ErrDuplicateSerial
	}
	r.nextID++
	created := equipment.Hydrate(r.nextID, e.Values(), e.ApprovalStatus(), e.CreatedBy(), time.Now(), time.Now())
	r.items[r.nextID] = created
	return created, nil
}

func (r *memEquipmentRepo) Update(ctx context.Context, id uint, changes equipment.Record) (equipment.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	r.updates++
	e = e.Apply(changes)
	r.items[id] = e
	return e, nil
}

func (r *memEquipmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.items[id]; !ok {
		return equipment.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memEquipmentRepo) ReplaceAll(ctx context.Context, items []equipment.Equipment) (int64, error) {
	if r.failOn == "replace" {
		return 0, errors.New("copy failed")
	}
	r.items = map[uint]equipment.Equipment{}
	for _, e := range items {
		r.nextID++
		r.items[r.nextID] = equipment.Hydrate(r.nextID, e.Values(), e.ApprovalStatus(), e.CreatedBy(), time.Now(), time.Now())
	}
	return int64(len(items)), nil
}

type memHistoryRepo struct {
	entries []history.Entry
}

func (r *memHistoryRepo) CreateMany(ctx context.Context, entries []history.Entry) (int64, error) {
	r.entries = append(r.entries, entries...)
	return int64(len(entries)), nil
}

func (r *memHistoryRepo) List(ctx context.Context, params *history.FindParams) ([]history.Entry, error) {
	var out []history.Entry
	for _, e := range r.entries {
		if e.EquipmentID == params.EquipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) Count(ctx context.Context, params *history.FindParams) (int64, error) {
	list, _ := r.List(ctx, params)
	return int64(len(list)), nil
}

type memSettingsRepo struct {
	settings importsettings.Settings
	saves    int
}

func (r *memSettingsRepo) Get(ctx context.Context) (importsettings.Settings, error) {
	return r.settings, nil
}

func (r *memSettingsRepo) Save(ctx context.Context, s importsettings.Settings) error {
	r.saves++
	r.settings = s
	return nil
}

type auditLine struct {
	actor, action string
	entityID      *uint
	details       any
}

type memAuditor struct {
	lines []auditLine
}

func (a *memAuditor) Audit(ctx context.Context, actor, action, entityType string, entityID *uint, details any) error {
	a.lines = append(a.lines, auditLine{actor: actor, action: action, entityID: entityID, details: details})
	return nil
}

type memLocker struct {
	locked   bool
	acquired int
	released int
}

func (l *memLocker) Acquire(ctx context.Context, name string) (importlock.Release, error) {
	if l.locked {
		return nil, importlock.ErrLocked
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type memPublisher struct {
	messages []outbox.Message
}

func (p *memPublisher) Enqueue(ctx context.Context, tx repo.Tx, msg outbox.Message) (int64, error) {
	p.messages = append(p.messages, msg)
	return int64(len(p.messages)), nil
}

func (p *memPublisher) EnqueueJSON(ctx context.Context, tx repo.Tx, topic string, payload any) (uuid.UUID, error) {
	id := uuid.New()
	p.messages = append(p.messages, outbox.Message{Topic: topic, EventID: id})
	return id, nil
}

type fixture struct {
	equipment *memEquipmentRepo
	history   *memHistoryRepo
	settings  *memSettingsRepo
	auditor   *memAuditor
	locker    *memLocker
	publisher *memPublisher
	imports   *ImportService
	items     *EquipmentService
}

func newFixture(seed ...equipment.Record) *fixture {
	f := &fixture{
		equipment: newMemEquipmentRepo(seed...),
		history:   &memHistoryRepo{},
		settings:  &memSettingsRepo{},
		auditor:   &memAuditor{},
		locker:    &memLocker{},
		publisher: &memPublisher{},
	}
	recorder := NewHistoryRecorder(f.history, f.auditor)
	f.imports = NewImportService(f.equipment, f.settings, recorder, f.locker, f.publisher)
	f.imports.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	f.items = NewEquipmentService(f.equipment, f.history, recorder, f.auditor)
	return f
}
