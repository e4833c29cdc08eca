package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/modules/equipment/presentation/mappers"
	"github.com/iota-uz/inventory/modules/equipment/presentation/viewmodels"
	"github.com/iota-uz/inventory/modules/equipment/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/httpapi"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EquipmentAPIController struct {
	equipmentService *services.EquipmentService
	exportService    *services.ExportService
	basePath         string
	pageSize         int
	maxPageSize      int
}

func NewEquipmentAPIController(app application.Application, pageSize, maxPageSize int) application.Controller {
	return &EquipmentAPIController{
		equipmentService: app.Service(services.EquipmentService{}).(*services.EquipmentService),
		exportService:    app.Service(services.ExportService{}).(*services.ExportService),
		basePath:         "/equipment/api/equipment",
		pageSize:         pageSize,
		maxPageSize:      maxPageSize,
	}
}

func (c *EquipmentAPIController) Key() string {
	return c.basePath
}

func (c *EquipmentAPIController) Register(r *mux.Router) {
	// Registered ahead of the prefix router, which would otherwise swallow the path.
	r.HandleFunc(c.basePath+".xlsx", c.Export).Methods(http.MethodGet)

	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPatch, http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/history", c.History).Methods(http.MethodGet)
}

func (c *EquipmentAPIController) List(w http.ResponseWriter, r *http.Request) {
	pagination := composables.UsePaginated(r, c.pageSize, c.maxPageSize)
	q := r.URL.Query()
	params := &equipment.FindParams{
		Query:  strings.TrimSpace(q.Get("q")),
		Status: equipment.Status(strings.TrimSpace(q.Get("status"))),
		SortBy: equipment.SortField(q.Get("sort")),
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}
	switch params.SortBy {
	case "", equipment.SortBySerial, equipment.SortByUpdatedAt:
	default:
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_FILTER", "unknown sort field "+string(params.SortBy), nil)
		return
	}

	items, total, err := c.equipmentService.GetPaginated(r.Context(), params)
	if err != nil {
		c.writeFailure(w, r, "list equipment", err)
		return
	}
	_ = httpapi.WriteOK(w, "", &viewmodels.EquipmentPage{
		Items:   mappers.EquipmentsToViewModels(items),
		Total:   total,
		Page:    pagination.Page,
		PerPage: pagination.Limit,
	})
}

func (c *EquipmentAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := c.equipmentService.GetByID(r.Context(), id)
	if err != nil {
		c.writeFailure(w, r, "get equipment", err)
		return
	}
	_ = httpapi.WriteOK(w, "", mappers.EquipmentToViewModel(item))
}

func (c *EquipmentAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto equipment.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", nil)
		return
	}
	created, err := c.equipmentService.Create(r.Context(), requestActor(r), &dto)
	if err != nil {
		c.writeFailure(w, r, "create equipment", err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, &httpapi.Result{
		Success: true,
		Message: "equipment created",
		Data:    mappers.EquipmentToViewModel(created),
	})
}

func (c *EquipmentAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var dto equipment.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", nil)
		return
	}
	updated, err := c.equipmentService.Update(r.Context(), requestActor(r), id, &dto)
	if err != nil {
		c.writeFailure(w, r, "update equipment", err)
		return
	}
	_ = httpapi.WriteOK(w, "equipment updated", mappers.EquipmentToViewModel(updated))
}

func (c *EquipmentAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.equipmentService.Delete(r.Context(), requestActor(r), id); err != nil {
		c.writeFailure(w, r, "delete equipment", err)
		return
	}
	_ = httpapi.WriteOK(w, "equipment deleted", nil)
}

func (c *EquipmentAPIController) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pagination := composables.UsePaginated(r, c.pageSize, c.maxPageSize)
	entries, total, err := c.equipmentService.History(r.Context(), id, pagination.Limit, pagination.Offset)
	if err != nil {
		c.writeFailure(w, r, "list equipment history", err)
		return
	}
	_ = httpapi.WriteOK(w, "", &viewmodels.HistoryPage{
		Entries: mappers.HistoryToViewModels(entries),
		Total:   total,
		Page:    pagination.Page,
		PerPage: pagination.Limit,
	})
}

func (c *EquipmentAPIController) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := c.exportService.Export(r.Context(), &buf); err != nil {
		c.writeFailure(w, r, "export equipment", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="equipment.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (c *EquipmentAPIController) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid equipment", verr.Fields)
	case errors.Is(err, equipment.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, equipment.ErrDuplicateSerial):
		_ = httpapi.WriteError(w, http.StatusConflict, "DUPLICATE_SERIAL", err.Error(), nil)
	case errors.Is(err, services.ErrActorRequired):
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "ACTOR_REQUIRED", err.Error(), nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error(op)
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "could not "+op, nil)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid equipment id", nil)
		return 0, false
	}
	return uint(id), true
}

func requestActor(r *http.Request) string {
	actor, err := composables.UseActor(r.Context())
	if err != nil {
		return ""
	}
	return actor.Username
}
