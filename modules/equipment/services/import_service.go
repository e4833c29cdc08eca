package services

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/domain/entities/importsettings"
	"github.com/iota-uz/inventory/modules/equipment/domain/inventory"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/importlock"
	"github.com/iota-uz/inventory/pkg/outbox"
)

const (
	OperationConsolidate = "consolidate"
	OperationReconcile   = "reconcile"

	FileBase     = "base_file"
	FileAbsolute = "absolute_file"

	TopicConsolidated = "equipment.consolidated"
	TopicReconciled   = "equipment.reconciled"

	importLockName = "equipment-import"
)

var tracer = otel.Tracer("github.com/iota-uz/inventory/modules/equipment/services")

// ConsolidateInput carries the raw uploads. A nil slice means the file was not sent.
type ConsolidateInput struct {
	Base     []byte
	Absolute []byte
	Actor    string
	DryRun   bool
}

type ReconcileInput struct {
	Absolute []byte
	Actor    string
	DryRun   bool
}

// Summary describes one import run. It is also the outbox payload of committed runs.
type Summary struct {
	RunID              uuid.UUID           `json:"runId"`
	Operation          string              `json:"operation"`
	Actor              string              `json:"actor"`
	DryRun             bool                `json:"dryRun"`
	Records            int                 `json:"records"`
	Inserted           int                 `json:"inserted"`
	Updated            int                 `json:"updated"`
	Unchanged          int                 `json:"unchanged"`
	Replaced           int64               `json:"replaced,omitempty"`
	HistoryEntries     int                 `json:"historyEntries"`
	DroppedBlankSerial map[string]int      `json:"droppedBlankSerial,omitempty"`
	UnmappedHeaders    map[string][]string `json:"unmappedHeaders,omitempty"`
	CompletedAt        time.Time           `json:"completedAt"`
}

type ImportService struct {
	equipmentRepo equipment.Repository
	settingsRepo  importsettings.Repository
	recorder      *HistoryRecorder
	locker        importlock.Locker
	publisher     outbox.Publisher
	inTx          func(ctx context.Context, fn func(context.Context) error) error
	now           func() time.Time
}

func NewImportService(
	equipmentRepo equipment.Repository,
	settingsRepo importsettings.Repository,
	recorder *HistoryRecorder,
	locker importlock.Locker,
	publisher outbox.Publisher,
) *ImportService {
	return &ImportService{
		equipmentRepo: equipmentRepo,
		settingsRepo:  settingsRepo,
		recorder:      recorder,
		locker:        locker,
		publisher:     publisher,
		inTx:          composables.InTx,
		now:           time.Now,
	}
}

// Status returns the import markers.
func (s *ImportService) Status(ctx context.Context) (importsettings.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// Consolidate replaces the whole inventory with the merge of both files.
func (s *ImportService) Consolidate(ctx context.Context, in ConsolidateInput) (summary Summary, err error) {
	ctx, span, finish := s.start(ctx, OperationConsolidate, in.Actor, in.DryRun)
	defer func() { finish(summary, err) }()

	summary = s.newSummary(OperationConsolidate, in.Actor, in.DryRun)
	if strings.TrimSpace(in.Actor) == "" {
		return summary, ErrActorRequired
	}
	if in.Base == nil && in.Absolute == nil {
		return summary, inventory.ErrNoInput
	}

	var base, absolute []equipment.Record
	if in.Base != nil {
		if base, err = parseUpload(inventory.FormatBase, in.Base, &summary); err != nil {
			return summary, err
		}
	}
	if in.Absolute != nil {
		if absolute, err = parseUpload(inventory.FormatAbsolute, in.Absolute, &summary); err != nil {
			return summary, err
		}
	}

	dataset, err := inventory.Consolidate(base, absolute)
	if err != nil {
		return summary, err
	}
	summary.Records = len(dataset)
	summary.Inserted = len(dataset)
	span.SetAttributes(attribute.Int("import.records", len(dataset)))
	if in.DryRun {
		summary.CompletedAt = s.now().UTC()
		return summary, nil
	}

	items := make([]equipment.Equipment, 0, len(dataset))
	for _, rec := range dataset {
		items = append(items, equipment.New(rec, equipment.WithCreatedBy(in.Actor)))
	}

	err = s.locked(ctx, func(txCtx context.Context) error {
		n, err := s.equipmentRepo.ReplaceAll(txCtx, items)
		if err != nil {
			return persistFailure("replace equipment", err)
		}
		summary.Replaced = n
		summary.CompletedAt = s.now().UTC()
		return s.finishRun(txCtx, summary, TopicConsolidated, func(st importsettings.Settings) importsettings.Settings {
			return st.AfterConsolidation(summary.CompletedAt)
		})
	})
	return summary, err
}

// PeriodicUpdate reconciles the inventory with an Absolute export. Nothing is ever deleted.
func (s *ImportService) PeriodicUpdate(ctx context.Context, in ReconcileInput) (summary Summary, err error) {
	ctx, span, finish := s.start(ctx, OperationReconcile, in.Actor, in.DryRun)
	defer func() { finish(summary, err) }()

	summary = s.newSummary(OperationReconcile, in.Actor, in.DryRun)
	if strings.TrimSpace(in.Actor) == "" {
		return summary, ErrActorRequired
	}
	if in.Absolute == nil {
		return summary, &FileError{File: FileAbsolute, Err: inventory.ErrNoInput}
	}
	incoming, err := parseUpload(inventory.FormatAbsolute, in.Absolute, &summary)
	if err != nil {
		return summary, err
	}

	if in.DryRun {
		persisted, err := s.equipmentRepo.GetAll(ctx)
		if err != nil {
			return summary, persistFailure("load equipment", err)
		}
		plan := inventory.Reconcile(incoming, persisted, in.Actor)
		summary.applyPlan(plan)
		summary.CompletedAt = s.now().UTC()
		return summary, nil
	}

	err = s.locked(ctx, func(txCtx context.Context) error {
		persisted, err := s.equipmentRepo.GetAll(txCtx)
		if err != nil {
			return persistFailure("load equipment", err)
		}
		plan := inventory.Reconcile(incoming, persisted, in.Actor)
		summary.applyPlan(plan)
		span.SetAttributes(
			attribute.Int("import.inserted", summary.Inserted),
			attribute.Int("import.updated", summary.Updated),
		)

		if err := s.applyPlan(txCtx, plan, summary.Actor); err != nil {
			return err
		}
		summary.CompletedAt = s.now().UTC()
		return s.finishRun(txCtx, summary, TopicReconciled, func(st importsettings.Settings) importsettings.Settings {
			return st.AfterPeriodicUpdate(summary.CompletedAt)
		})
	})
	return summary, err
}

// locked runs fn in one transaction holding the import lock. The lock is released only once the
// transaction has committed or rolled back, so the next run always reads committed state.
func (s *ImportService) locked(ctx context.Context, fn func(context.Context) error) error {
	var release importlock.Release
	defer func() {
		if release != nil {
			_ = release(context.WithoutCancel(ctx))
		}
	}()
	return s.inTx(ctx, func(txCtx context.Context) error {
		r, err := s.locker.Acquire(txCtx, importLockName)
		if err != nil {
			return err
		}
		release = r
		return fn(txCtx)
	})
}

// applyPlan writes every upsert with its history rows and audit line.
func (s *ImportService) applyPlan(ctx context.Context, plan inventory.Plan, actor string) error {
	for _, up := range plan.Upserts {
		var id uint
		switch up.Kind {
		case inventory.UpsertInsert:
			created, err := s.equipmentRepo.Create(ctx, equipment.New(up.Fields,
				equipment.WithApprovalStatus(up.ApprovalStatus),
				equipment.WithCreatedBy(up.CreatedBy),
			))
			if err != nil {
				return persistFailure("insert "+up.MergeKey, err)
			}
			id = created.ID()
		case inventory.UpsertUpdate:
			if _, err := s.equipmentRepo.Update(ctx, up.ID, up.Fields); err != nil {
				return persistFailure("update "+up.MergeKey, err)
			}
			id = up.ID
		default:
			return errors.Errorf("unknown upsert kind %v", up.Kind)
		}
		if err := s.recorder.Record(ctx, id, actor, up.Changes); err != nil {
			return persistFailure("record history "+up.MergeKey, err)
		}
	}
	return nil
}

// finishRun records the run's audit line, the settings marker and the outbox message in ctx's transaction.
func (s *ImportService) finishRun(
	ctx context.Context,
	summary Summary,
	topic string,
	mark func(importsettings.Settings) importsettings.Settings,
) error {
	if err := s.recorder.RecordRun(ctx, summary.Actor, "import."+summary.Operation, summary); err != nil {
		return persistFailure("audit run", err)
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return persistFailure("load import settings", err)
	}
	if err := s.settingsRepo.Save(ctx, mark(settings)); err != nil {
		return persistFailure("save import settings", err)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return persistFailure("outbox", err)
	}
	if _, err := s.publisher.Enqueue(ctx, tx, outboxMessage(topic, summary)); err != nil {
		return persistFailure("outbox", err)
	}
	return nil
}

func (s *ImportService) newSummary(op, actor string, dryRun bool) Summary {
	return Summary{
		RunID:     uuid.New(),
		Operation: op,
		Actor:     strings.TrimSpace(actor),
		DryRun:    dryRun,
	}
}

// start opens the span and returns the hook that logs, counts and closes it.
func (s *ImportService) start(ctx context.Context, op, actor string, dryRun bool) (context.Context, trace.Span, func(Summary, error)) {
	ctx, span := tracer.Start(ctx, "equipment.import."+op, trace.WithAttributes(
		attribute.String("import.actor", actor),
		attribute.Bool("import.dry_run", dryRun),
	))
	started := s.now()
	m := getImportMetrics()
	return ctx, span, func(summary Summary, err error) {
		defer span.End()
		logger := composables.UseLogger(ctx).WithFields(logrus.Fields{
			"operation": op,
			"run_id":    summary.RunID,
			"actor":     summary.Actor,
			"dry_run":   dryRun,
		})
		m.duration.WithLabelValues(op).Observe(s.now().Sub(started).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			m.runs.WithLabelValues(op, "error").Inc()
			logger.WithError(err).Warn("import failed")
			return
		}
		result := "committed"
		if dryRun {
			result = "dry_run"
		} else {
			m.records.WithLabelValues(op, "inserted").Add(float64(summary.Inserted))
			m.records.WithLabelValues(op, "updated").Add(float64(summary.Updated))
			m.records.WithLabelValues(op, "unchanged").Add(float64(summary.Unchanged))
			m.records.WithLabelValues(op, "replaced").Add(float64(summary.Replaced))
		}
		m.runs.WithLabelValues(op, result).Inc()
		logger.WithFields(logrus.Fields{
			"records":         summary.Records,
			"inserted":        summary.Inserted,
			"updated":         summary.Updated,
			"unchanged":       summary.Unchanged,
			"history_entries": summary.HistoryEntries,
		}).Info("import finished")
	}
}

func (sum *Summary) applyPlan(plan inventory.Plan) {
	sum.Records = plan.Incoming
	sum.Inserted = plan.Inserts()
	sum.Updated = plan.Updates()
	sum.Unchanged = plan.Unchanged
	sum.HistoryEntries = plan.HistoryEntries()
}

// uploadField names the multipart field carrying a file of format f.
func uploadField(f inventory.SourceFormat) string {
	return f.String() + "_file"
}

// parseUpload decodes and parses one file, folding its warnings into summary.
func parseUpload(format inventory.SourceFormat, data []byte, summary *Summary) ([]equipment.Record, error) {
	file := uploadField(format)
	m, ok := inventory.MappingFor(format)
	if !ok {
		return nil, errors.Errorf("no header mapping for %s", format)
	}
	if kind, ok := binaryUpload(data); ok {
		return nil, &FileError{File: file, Err: errors.Wrapf(inventory.ErrMalformedInput, "got %s", kind)}
	}
	text, err := inventory.DecodeText(data)
	if err != nil {
		return nil, &FileError{File: file, Err: err}
	}
	res, err := inventory.ParseDetailed(text, m)
	if err != nil {
		return nil, &FileError{File: file, Err: err}
	}
	if res.DroppedBlankSerial > 0 {
		if summary.DroppedBlankSerial == nil {
			summary.DroppedBlankSerial = map[string]int{}
		}
		summary.DroppedBlankSerial[file] = res.DroppedBlankSerial
		getImportMetrics().dropped.WithLabelValues(file).Add(float64(res.DroppedBlankSerial))
	}
	if len(res.UnmappedHeaders) > 0 {
		if summary.UnmappedHeaders == nil {
			summary.UnmappedHeaders = map[string][]string{}
		}
		summary.UnmappedHeaders[file] = res.UnmappedHeaders
	}
	return res.Records, nil
}

// binaryUpload reports the detected type when data is a recognised non-text format, such as a
// workbook uploaded in place of its CSV export. Undetectable content is left to the decoder.
func binaryUpload(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return "", false
		}
	}
	if detected.Is("application/octet-stream") {
		return "", false
	}
	return detected.String(), true
}
