package logging

import (
	"embed"
	"io/fs"

	"github.com/iota-uz/inventory/modules/logging/handlers"
	"github.com/iota-uz/inventory/modules/logging/infrastructure/persistence"
	"github.com/iota-uz/inventory/modules/logging/presentation/controllers"
	"github.com/iota-uz/inventory/modules/logging/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	logsService := services.NewLogsService(persistence.NewActionLogRepository())
	app.RegisterServices(logsService)
	app.RegisterControllers(
		controllers.NewLogsController(app, conf.PageSize, conf.MaxPageSize),
	)
	app.RegisterMiddleware(handlers.ActionLogMiddleware(logsService, conf.ActionLogEnabled))
	return nil
}

func (m *Module) Name() string {
	return "logging"
}
