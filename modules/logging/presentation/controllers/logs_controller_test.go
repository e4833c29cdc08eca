package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/constants"
	"github.com/iota-uz/inventory/pkg/middleware"
)

type fakeRepo struct {
	params *actionlog.FindParams
}

func (f *fakeRepo) List(ctx context.Context, params *actionlog.FindParams) ([]*actionlog.ActionLog, error) {
	f.params = params
	id := uint(3)
	return []*actionlog.ActionLog{{
		ID: 1, Actor: "admin", Action: "import.consolidate", EntityType: "equipment", EntityID: &id,
		Details:   json.RawMessage(`{"inserted":2}`),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}, nil
}

func (f *fakeRepo) Count(ctx context.Context, params *actionlog.FindParams) (int64, error) {
	return 41, nil
}

func (f *fakeRepo) Create(ctx context.Context, log *actionlog.ActionLog) error { return nil }

func newRouter(repo actionlog.Repository) *mux.Router {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(services.NewLogsService(repo))
	r := mux.NewRouter()
	// A bound transaction keeps WithTransaction from reaching for a pool.
	r.Use(middleware.Provide(constants.TxKey, stubTx{}))
	NewLogsController(app, 20, 50).Register(r)
	return r
}

func TestLogsController_List(t *testing.T) {
	repo := &fakeRepo{}
	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/logs/api/actions?actor=admin&entity_id=3&from=2026-01-01&to=2026-01-02&page=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", repo.params.Actor)
	require.Equal(t, uint(3), *repo.params.EntityID)
	require.Equal(t, 20, repo.params.Limit)
	require.Equal(t, 20, repo.params.Offset)
	require.Equal(t, time.Date(2026, 1, 2, 23, 59, 59, 999999999, time.UTC), *repo.params.To)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Total int64 `json:"total"`
			Logs  []struct {
				Action    string         `json:"action"`
				Details   map[string]int `json:"details"`
				CreatedAt string         `json:"createdAt"`
			} `json:"logs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, int64(41), body.Data.Total)
	require.Len(t, body.Data.Logs, 1)
	require.Equal(t, 2, body.Data.Logs[0].Details["inserted"])
	require.Equal(t, "2026-01-02T03:04:05Z", body.Data.Logs[0].CreatedAt)
}

func TestLogsController_List_InvalidFilter(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/api/actions?entity_id=x", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
