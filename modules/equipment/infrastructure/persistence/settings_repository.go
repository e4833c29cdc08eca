package persistence

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/inventory/modules/equipment/domain/entities/importsettings"
	"github.com/iota-uz/inventory/modules/equipment/infrastructure/persistence/models"
	"github.com/iota-uz/inventory/pkg/composables"
)

type ImportSettingsRepository struct{}

func NewImportSettingsRepository() importsettings.Repository {
	return &ImportSettingsRepository{}
}

// Get reads the markers. Missing keys yield the zero Settings.
func (r *ImportSettingsRepository) Get(ctx context.Context) (importsettings.Settings, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importsettings.Settings{}, err
	}
	rows, err := tx.Query(ctx, `SELECT key, value FROM import_settings WHERE key = ANY($1)`,
		[]string{importsettings.KeyHasInitialConsolidationRun, importsettings.KeyLastAbsoluteUpdateTimestamp})
	if err != nil {
		return importsettings.Settings{}, errors.Wrap(err, "query import settings")
	}
	defer rows.Close()

	var consolidated bool
	var lastUpdate time.Time
	for rows.Next() {
		var m models.Setting
		if err := rows.Scan(&m.Key, &m.Value); err != nil {
			return importsettings.Settings{}, errors.Wrap(err, "scan import setting")
		}
		switch m.Key {
		case importsettings.KeyHasInitialConsolidationRun:
			consolidated, _ = strconv.ParseBool(m.Value)
		case importsettings.KeyLastAbsoluteUpdateTimestamp:
			if m.Value == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339, m.Value)
			if err != nil {
				return importsettings.Settings{}, errors.Wrapf(err, "parse %s", m.Key)
			}
			lastUpdate = ts
		}
	}
	if err := rows.Err(); err != nil {
		return importsettings.Settings{}, err
	}
	return importsettings.Hydrate(consolidated, lastUpdate), nil
}

func (r *ImportSettingsRepository) Save(ctx context.Context, s importsettings.Settings) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	pairs := []models.Setting{
		{Key: importsettings.KeyHasInitialConsolidationRun, Value: strconv.FormatBool(s.HasInitialConsolidationRun())},
		{Key: importsettings.KeyLastAbsoluteUpdateTimestamp, Value: s.LastAbsoluteUpdateTimestamp()},
	}
	for _, p := range pairs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO import_settings (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			p.Key, p.Value,
		); err != nil {
			return errors.Wrapf(err, "save import setting %s", p.Key)
		}
	}
	return nil
}
