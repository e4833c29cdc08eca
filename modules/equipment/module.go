package equipment

import (
	"embed"
	"io/fs"

	"github.com/go-faster/errors"

	"github.com/iota-uz/inventory/modules/equipment/handlers"
	"github.com/iota-uz/inventory/modules/equipment/infrastructure/persistence"
	"github.com/iota-uz/inventory/modules/equipment/presentation/controllers"
	"github.com/iota-uz/inventory/modules/equipment/services"
	loggingservices "github.com/iota-uz/inventory/modules/logging/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/configuration"
	"github.com/iota-uz/inventory/pkg/importlock"
	"github.com/iota-uz/inventory/pkg/outbox"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

// Register expects the logging module to be registered first; its LogsService is the auditor.
func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	table, err := outbox.ParseIdentifier(conf.Outbox.Table)
	if err != nil {
		return errors.Wrap(err, "outbox table")
	}

	equipmentRepo := persistence.NewEquipmentRepository()
	historyRepo := persistence.NewHistoryRepository()
	auditor := app.Service(loggingservices.LogsService{}).(*loggingservices.LogsService)
	recorder := services.NewHistoryRecorder(historyRepo, auditor)

	app.RegisterServices(
		recorder,
		services.NewImportService(
			equipmentRepo,
			persistence.NewImportSettingsRepository(),
			recorder,
			newLocker(conf),
			outbox.NewPublisher(table),
		),
		services.NewEquipmentService(equipmentRepo, historyRepo, recorder, auditor),
		services.NewExportService(equipmentRepo),
	)
	app.RegisterControllers(
		controllers.NewImportAPIController(app, conf.Import.MaxUploadSize),
		controllers.NewEquipmentAPIController(app, conf.PageSize, conf.MaxPageSize),
	)
	if bus := app.EventPublisher(); bus != nil {
		bus.Subscribe(handlers.NewImportEventsHandler(conf.Logger()).Handle)
	}
	return nil
}

func newLocker(conf *configuration.Configuration) importlock.Locker {
	if conf.Import.LockBackend == "redis" {
		return importlock.NewRedisLocker(importlock.NewRedisClient(conf.RedisURL), conf.Import.LockTTL)
	}
	return importlock.NewPostgresLocker()
}

func (m *Module) Name() string {
	return "equipment"
}
