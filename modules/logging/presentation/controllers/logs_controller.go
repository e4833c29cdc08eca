package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/presentation/mappers"
	"github.com/iota-uz/inventory/modules/logging/presentation/viewmodels"
	"github.com/iota-uz/inventory/modules/logging/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/httpapi"
	"github.com/iota-uz/inventory/pkg/middleware"
)

type LogsController struct {
	logsService *services.LogsService
	basePath    string
	pageSize    int
	maxPageSize int
}

func NewLogsController(app application.Application, pageSize, maxPageSize int) application.Controller {
	return &LogsController{
		logsService: app.Service(services.LogsService{}).(*services.LogsService),
		basePath:    "/logs/api",
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (c *LogsController) Key() string {
	return c.basePath
}

func (c *LogsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.WithTransaction())
	router.HandleFunc("/actions", c.List).Methods(http.MethodGet)
}

func (c *LogsController) List(w http.ResponseWriter, r *http.Request) {
	pagination := composables.UsePaginated(r, c.pageSize, c.maxPageSize)
	params, err := buildActionFilters(r, pagination.Limit, pagination.Offset)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
		return
	}

	logs, total, err := c.logsService.ListActionLogs(r.Context(), params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("list action logs")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "could not list action logs", nil)
		return
	}
	_ = httpapi.WriteOK(w, "", &viewmodels.ActionLogPage{
		Logs:    mappers.ActionLogsToViewModels(logs),
		Total:   total,
		Page:    pagination.Page,
		PerPage: pagination.Limit,
	})
}

func buildActionFilters(r *http.Request, limit, offset int) (*actionlog.FindParams, error) {
	q := r.URL.Query()
	params := &actionlog.FindParams{
		Actor:      strings.TrimSpace(q.Get("actor")),
		Action:     strings.TrimSpace(q.Get("action")),
		EntityType: strings.TrimSpace(q.Get("entity_type")),
		Limit:      limit,
		Offset:     offset,
	}

	if raw := strings.TrimSpace(q.Get("entity_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		id := uint(parsed)
		params.EntityID = &id
	}
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, err
		}
		params.From = &parsed
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, err
		}
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		params.To = &end
	}
	return params, nil
}
