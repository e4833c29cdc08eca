package modules

import (
	"github.com/iota-uz/inventory/modules/equipment"
	"github.com/iota-uz/inventory/modules/logging"
	"github.com/iota-uz/inventory/pkg/application"
)

// BuiltInModules is ordered: equipment resolves the logging module's service at registration.
var BuiltInModules = []application.Module{
	logging.NewModule(),
	equipment.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
