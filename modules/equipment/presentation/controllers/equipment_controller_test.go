package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "admin")
	return req
}

func TestEquipmentAPI_List(t *testing.T) {
	e := newEnv("A1", "B2")
	rec, res := serve(e, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment?q=a1&status=Estoque&sort=serial&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a1", e.equipment.params.Query)
	require.Equal(t, equipment.StatusEstoque, e.equipment.params.Status)
	require.Equal(t, equipment.SortBySerial, e.equipment.params.SortBy)
	require.Equal(t, 20, e.equipment.params.Offset)

	var page struct {
		Items []struct {
			ID     uint              `json:"id"`
			Serial string            `json:"serial"`
			Fields map[string]string `json:"fields"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &page))
	require.Equal(t, int64(2), page.Total)
	require.Equal(t, "A1", page.Items[0].Serial)
	require.Equal(t, "Estoque", page.Items[0].Fields["status"])

	rec, _ = serve(e, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment?sort=nope", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEquipmentAPI_Create(t *testing.T) {
	e := newEnv("A1")

	rec, res := serve(e, jsonRequest(http.MethodPost, "/equipment/api/equipment", `{"serial":"N1","usuarioAtual":"Ann"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, res.Success)
	created, err := e.equipment.GetBySerial(t.Context(), "N1")
	require.NoError(t, err)
	require.Equal(t, equipment.StatusEmUso, created.Status())
	require.Equal(t, "admin", created.CreatedBy())

	rec, _ = serve(e, jsonRequest(http.MethodPost, "/equipment/api/equipment", `{"serial":"a 1"}`))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(e, jsonRequest(http.MethodPost, "/equipment/api/equipment", `{"serial":"","emailColaborador":"x"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr struct {
		Code string            `json:"code"`
		Meta map[string]string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	require.Equal(t, "VALIDATION_ERROR", verr.Code)
	require.Contains(t, verr.Meta, "serial")
	require.Contains(t, verr.Meta, "emailColaborador")

	req := jsonRequest(http.MethodPost, "/equipment/api/equipment", `{"serial":"N2"}`)
	req.Header.Del(actorHeader)
	rec, _ = serve(e, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEquipmentAPI_UpdateAndHistory(t *testing.T) {
	e := newEnv("A1")

	rec, _ := serve(e, jsonRequest(http.MethodPatch, "/equipment/api/equipment/1", `{"usuarioAtual":"Bob","local":"HQ"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	a1, err := e.equipment.GetByID(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, equipment.StatusEmUso, a1.Status())

	rec, res := serve(e, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment/1/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Entries []struct {
			FieldName string `json:"fieldName"`
			ChangedBy string `json:"changedBy"`
		} `json:"entries"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &page))
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, "admin", page.Entries[0].ChangedBy)

	rec, _ = serve(e, jsonRequest(http.MethodPatch, "/equipment/api/equipment/9", `{"local":"HQ"}`))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentAPI_GetAndDelete(t *testing.T) {
	e := newEnv("A1")

	rec, _ := serve(e, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(e, jsonRequest(http.MethodDelete, "/equipment/api/equipment/1", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, e.equipment.items)

	rec, _ = serve(e, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentAPI_Export(t *testing.T) {
	e := newEnv("A1", "B2")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/equipment/api/equipment.xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()
	rows, err := book.GetRows("Equipment")
	require.NoError(t, err)
	require.Len(t, rows, 3)
}
