package controllers

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/importsettings"
	"github.com/iota-uz/inventory/modules/equipment/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/constants"
	"github.com/iota-uz/inventory/pkg/importlock"
	"github.com/iota-uz/inventory/pkg/middleware"
	"github.com/iota-uz/inventory/pkg/outbox"
	"github.com/iota-uz/inventory/pkg/repo"
)

const actorHeader = "X-Actor-Username"

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

type memEquipment struct {
	nextID uint
	items  map[uint]equipment.Equipment
	params *equipment.FindParams
}

func newMemEquipment(serials ...string) *memEquipment {
	m := &memEquipment{items: map[uint]equipment.Equipment{}}
	for _, s := range serials {
		m.nextID++
		m.items[m.nextID] = equipment.Hydrate(m.nextID,
			equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: s, equipment.FieldStatus: "Estoque"}),
			equipment.ApprovalApproved, "seed", time.Time{}, time.Time{})
	}
	return m
}

func (m *memEquipment) all() []equipment.Equipment {
	out := make([]equipment.Equipment, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *memEquipment) Count(ctx context.Context, params *equipment.FindParams) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *memEquipment) GetPaginated(ctx context.Context, params *equipment.FindParams) ([]equipment.Equipment, error) {
	m.params = params
	return m.all(), nil
}

func (m *memEquipment) GetAll(ctx context.Context) ([]equipment.Equipment, error) {
	return m.all(), nil
}

func (m *memEquipment) GetByID(ctx context.Context, id uint) (equipment.Equipment, error) {
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}

func (m *memEquipment) GetBySerial(ctx context.Context, serial string) (equipment.Equipment, error) {
	for _, e := range m.items {
		if equipment.MergeKey(e.Serial()) == equipment.MergeKey(serial) {
			return e, nil
		}
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}

func (m *memEquipment) Create(ctx context.Context, e equipment.Equipment) (equipment.Equipment, error) {
	m.nextID++
	created := equipment.Hydrate(m.nextID, e.Values(), e.ApprovalStatus(), e.CreatedBy(), time.Now(), time.Now())
	m.items[m.nextID] = created
	return created, nil
}

func (m *memEquipment) Update(ctx context.Context, id uint, changes equipment.Record) (equipment.Equipment, error) {
	e, ok := m.items[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	e = e.Apply(changes)
	m.items[id] = e
	return e, nil
}

func (m *memEquipment) Delete(ctx context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return equipment.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memEquipment) ReplaceAll(ctx context.Context, items []equipment.Equipment) (int64, error) {
	m.items = map[uint]equipment.Equipment{}
	for _, e := range items {
		if _, err := m.Create(ctx, e); err != nil {
			return 0, err
		}
	}
	return int64(len(items)), nil
}

type memHistory struct {
	entries []history.Entry
}

func (m *memHistory) CreateMany(ctx context.Context, entries []history.Entry) (int64, error) {
	m.entries = append(m.entries, entries...)
	return int64(len(entries)), nil
}

func (m *memHistory) List(ctx context.Context, params *history.FindParams) ([]history.Entry, error) {
	var out []history.Entry
	for _, e := range m.entries {
		if e.EquipmentID == params.EquipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistory) Count(ctx context.Context, params *history.FindParams) (int64, error) {
	list, _ := m.List(ctx, params)
	return int64(len(list)), nil
}

type memSettings struct {
	settings importsettings.Settings
}

func (m *memSettings) Get(ctx context.Context) (importsettings.Settings, error) {
	return m.settings, nil
}

func (m *memSettings) Save(ctx context.Context, s importsettings.Settings) error {
	m.settings = s
	return nil
}

type nopAuditor struct{}

func (nopAuditor) Audit(ctx context.Context, actor, action, entityType string, entityID *uint, details any) error {
	return nil
}

type memLocker struct {
	locked bool
}

func (l *memLocker) Acquire(ctx context.Context, name string) (importlock.Release, error) {
	if l.locked {
		return nil, importlock.ErrLocked
	}
	return func(context.Context) error { return nil }, nil
}

type memPublisher struct {
	topics []string
}

func (p *memPublisher) Enqueue(ctx context.Context, tx repo.Tx, msg outbox.Message) (int64, error) {
	p.topics = append(p.topics, msg.Topic)
	return int64(len(p.topics)), nil
}

func (p *memPublisher) EnqueueJSON(ctx context.Context, tx repo.Tx, topic string, payload any) (uuid.UUID, error) {
	p.topics = append(p.topics, topic)
	return uuid.New(), nil
}

type env struct {
	equipment *memEquipment
	history   *memHistory
	settings  *memSettings
	locker    *memLocker
	publisher *memPublisher
	router    *mux.Router
}

func newEnv(serials ...string) *env {
	e := &env{
		equipment: newMemEquipment(serials...),
		history:   &memHistory{},
		settings:  &memSettings{},
		locker:    &memLocker{},
		publisher: &memPublisher{},
	}
	recorder := services.NewHistoryRecorder(e.history, nopAuditor{})
	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(
		services.NewImportService(e.equipment, e.settings, recorder, e.locker, e.publisher),
		services.NewEquipmentService(e.equipment, e.history, recorder, nopAuditor{}),
		services.NewExportService(e.equipment),
	)

	e.router = mux.NewRouter()
	// A bound transaction keeps the services from reaching for a pool.
	e.router.Use(middleware.Provide(constants.TxKey, stubTx{}), middleware.WithActor(actorHeader))
	NewImportAPIController(app, 1<<20).Register(e.router)
	NewEquipmentAPIController(app, 20, 50).Register(e.router)
	return e
}
