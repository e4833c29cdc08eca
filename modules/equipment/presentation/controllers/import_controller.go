package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/inventory/modules/equipment/domain/inventory"
	"github.com/iota-uz/inventory/modules/equipment/presentation/mappers"
	"github.com/iota-uz/inventory/modules/equipment/services"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/httpapi"
	"github.com/iota-uz/inventory/pkg/importlock"
)

type ImportAPIController struct {
	importService *services.ImportService
	basePath      string
	maxUploadSize int64
}

func NewImportAPIController(app application.Application, maxUploadSize int64) application.Controller {
	return &ImportAPIController{
		importService: app.Service(services.ImportService{}).(*services.ImportService),
		basePath:      "/equipment/api/import",
		maxUploadSize: maxUploadSize,
	}
}

func (c *ImportAPIController) Key() string {
	return c.basePath
}

func (c *ImportAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/consolidate", c.Consolidate).Methods(http.MethodPost)
	router.HandleFunc("/absolute", c.PeriodicUpdate).Methods(http.MethodPost)
	router.HandleFunc("/status", c.Status).Methods(http.MethodGet)
}

func (c *ImportAPIController) Consolidate(w http.ResponseWriter, r *http.Request) {
	if !c.parseForm(w, r) {
		return
	}
	base, err := readUpload(r, services.FileBase)
	if err != nil {
		writeResult(w, http.StatusBadRequest, false, fmt.Sprintf("could not read file %s", services.FileBase), nil)
		return
	}
	absolute, err := readUpload(r, services.FileAbsolute)
	if err != nil {
		writeResult(w, http.StatusBadRequest, false, fmt.Sprintf("could not read file %s", services.FileAbsolute), nil)
		return
	}

	summary, err := c.importService.Consolidate(r.Context(), services.ConsolidateInput{
		Base:     base,
		Absolute: absolute,
		Actor:    formActor(r),
		DryRun:   formDryRun(r),
	})
	if err != nil {
		status, msg := importFailure(err)
		writeResult(w, status, false, msg, nil)
		return
	}
	writeResult(w, http.StatusOK, true, consolidateMessage(summary), summary)
}

func (c *ImportAPIController) PeriodicUpdate(w http.ResponseWriter, r *http.Request) {
	if !c.parseForm(w, r) {
		return
	}
	absolute, err := readUpload(r, services.FileAbsolute)
	if err != nil {
		writeResult(w, http.StatusBadRequest, false, fmt.Sprintf("could not read file %s", services.FileAbsolute), nil)
		return
	}

	summary, err := c.importService.PeriodicUpdate(r.Context(), services.ReconcileInput{
		Absolute: absolute,
		Actor:    formActor(r),
		DryRun:   formDryRun(r),
	})
	if err != nil {
		status, msg := importFailure(err)
		writeResult(w, status, false, msg, nil)
		return
	}
	writeResult(w, http.StatusOK, true, reconcileMessage(summary), summary)
}

func (c *ImportAPIController) Status(w http.ResponseWriter, r *http.Request) {
	settings, err := c.importService.Status(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("load import status")
		writeResult(w, http.StatusInternalServerError, false, "could not load import status", nil)
		return
	}
	writeResult(w, http.StatusOK, true, "", mappers.ImportStatusToViewModel(settings))
}

func (c *ImportAPIController) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadSize)
	if err := r.ParseMultipartForm(c.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResult(w, http.StatusRequestEntityTooLarge, false, "upload is too large", nil)
			return false
		}
		writeResult(w, http.StatusBadRequest, false, "expected a multipart/form-data upload", nil)
		return false
	}
	return true
}

// readUpload returns nil when the part was not sent and a non-nil slice, possibly empty, when it was.
func readUpload(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// formActor prefers the username form field and falls back to the proxy-provided actor.
func formActor(r *http.Request) string {
	if username := strings.TrimSpace(r.FormValue("username")); username != "" {
		return username
	}
	if actor, err := composables.UseActor(r.Context()); err == nil {
		return actor.Username
	}
	return ""
}

func formDryRun(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.FormValue("dry_run"))
	return v
}

func importFailure(err error) (int, string) {
	var fileErr *services.FileError
	switch {
	case errors.As(err, &fileErr) && errors.Is(fileErr.Err, inventory.ErrNoInput):
		return http.StatusBadRequest, fmt.Sprintf("%s is required", fileErr.File)
	case errors.As(err, &fileErr):
		return http.StatusBadRequest, fmt.Sprintf("could not read file %s: %v", fileErr.File, fileErr.Err)
	case errors.Is(err, inventory.ErrMalformedInput):
		return http.StatusBadRequest, "could not read file"
	case errors.Is(err, inventory.ErrNoInput):
		return http.StatusBadRequest, "at least one of base_file or absolute_file is required"
	case errors.Is(err, services.ErrActorRequired):
		return http.StatusBadRequest, "username is required"
	case errors.Is(err, importlock.ErrLocked):
		return http.StatusConflict, "another import is already running"
	case errors.Is(err, services.ErrPersistence):
		return http.StatusInternalServerError, "could not persist the import; no changes were saved"
	default:
		return http.StatusInternalServerError, "import failed"
	}
}

func consolidateMessage(s services.Summary) string {
	msg := fmt.Sprintf("consolidated %d records", s.Records)
	if s.DryRun {
		return "dry run: " + msg
	}
	return msg
}

func reconcileMessage(s services.Summary) string {
	msg := fmt.Sprintf("inserted %d, updated %d, unchanged %d", s.Inserted, s.Updated, s.Unchanged)
	if s.DryRun {
		return "dry run: " + msg
	}
	return msg
}

func writeResult(w http.ResponseWriter, status int, success bool, message string, data any) {
	_ = httpapi.WriteJSON(w, status, &httpapi.Result{Success: success, Message: message, Data: data})
}
