package importsettings

import (
	"context"
	"time"
)

const (
	KeyHasInitialConsolidationRun  = "hasInitialConsolidationRun"
	KeyLastAbsoluteUpdateTimestamp = "lastAbsoluteUpdateTimestamp"
)

// Settings holds the import markers. It is read and written inside the import transaction.
type Settings struct {
	hasInitialConsolidationRun bool
	lastAbsoluteUpdate         time.Time
}

func Hydrate(hasInitialConsolidationRun bool, lastAbsoluteUpdate time.Time) Settings {
	return Settings{
		hasInitialConsolidationRun: hasInitialConsolidationRun,
		lastAbsoluteUpdate:         lastAbsoluteUpdate,
	}
}

func (s Settings) HasInitialConsolidationRun() bool { return s.hasInitialConsolidationRun }
func (s Settings) LastAbsoluteUpdate() time.Time    { return s.lastAbsoluteUpdate }

// LastAbsoluteUpdateTimestamp is the RFC3339 form, "" when no import has succeeded.
func (s Settings) LastAbsoluteUpdateTimestamp() string {
	if s.lastAbsoluteUpdate.IsZero() {
		return ""
	}
	return s.lastAbsoluteUpdate.UTC().Format(time.RFC3339)
}

// AfterConsolidation sets both markers. The consolidation flag is never cleared.
func (s Settings) AfterConsolidation(at time.Time) Settings {
	s.hasInitialConsolidationRun = true
	s.lastAbsoluteUpdate = at
	return s
}

func (s Settings) AfterPeriodicUpdate(at time.Time) Settings {
	s.lastAbsoluteUpdate = at
	return s
}

type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
