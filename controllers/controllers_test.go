package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/router"
	"github.com/nnhatnam05/pizza-dolce-staff-console/services"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

func setupConsole(t *testing.T, backend http.Handler) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	st := store.NewStore()
	rc := client.NewRestClient(server.URL, func() string { return "test" })
	reconciler := services.NewReconciler(rc, st)
	status := services.NewStatusController(rc, st, reconciler)

	return router.SetupRouter(st, status, reconciler), st
}

func staffToken(t *testing.T) string {
	token, err := utils.GenerateToken(9, "Minh", "staff")
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStateEndpointRequiresAuth(t *testing.T) {
	r, _ := setupConsole(t, http.NewServeMux())

	w := doRequest(r, http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/state", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStateReturnsProjection(t *testing.T) {
	r, st := setupConsole(t, http.NewServeMux())
	st.ReplaceTables([]models.Table{{ID: 1, TableNumber: "1", Status: models.TableAvailable}}, 1)
	st.AddStaffCall(models.StaffCall{TableID: 1, CallTime: "a"})

	w := doRequest(r, http.MethodGet, "/api/state", staffToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	view := data["view"].(map[string]interface{})
	tables := view["tables"].([]interface{})
	require.Len(t, tables, 1)
	assert.Equal(t, store.DisplayNeedsAssistance, tables[0].(map[string]interface{})["displayStatus"])
}

func TestGetOrderNotFound(t *testing.T) {
	r, _ := setupConsole(t, http.NewServeMux())

	w := doRequest(r, http.MethodGet, "/api/orders/42", staffToken(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransitionValidationError(t *testing.T) {
	r, st := setupConsole(t, http.NewServeMux())
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDelivery, Status: models.StatusDelivering, Version: 1})

	// Cancel tanpa alasan diblokir di 400 sebelum ada request keluar
	w := doRequest(r, http.MethodPost, "/api/orders/1/transition", staffToken(t), map[string]interface{}{
		"status": models.StatusCancelled,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransitionCheckReturnsOwnershipWarning(t *testing.T) {
	r, st := setupConsole(t, http.NewServeMux())
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, StaffID: 7, StaffName: "Linh", Version: 1})

	w := doRequest(r, http.MethodPost, "/api/orders/1/transition/check", staffToken(t), map[string]interface{}{
		"status": models.StatusInProgress,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	check := resp.Data.(map[string]interface{})
	assert.Equal(t, true, check["requiresConfirm"])
}

func TestTransitionCommitThroughBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dinein/orders/1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusInProgress})
	})

	r, st := setupConsole(t, mux)
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, Version: 1})

	w := doRequest(r, http.MethodPost, "/api/orders/1/transition", staffToken(t), map[string]interface{}{
		"status": models.StatusInProgress,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := st.GetOrder(1)
	assert.Equal(t, models.StatusInProgress, stored.Status)
}

func TestTransitionConflictWithoutConfirm(t *testing.T) {
	r, st := setupConsole(t, http.NewServeMux())
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, StaffID: 7, Version: 1})

	w := doRequest(r, http.MethodPost, "/api/orders/1/transition", staffToken(t), map[string]interface{}{
		"status": models.StatusInProgress,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSelectionRoundTrip(t *testing.T) {
	r, st := setupConsole(t, http.NewServeMux())
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, Version: 1})

	w := doRequest(r, http.MethodPost, "/api/orders/1/select", staffToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), st.Snapshot().SelectedOrderID)

	w = doRequest(r, http.MethodDelete, "/api/orders/1/select", staffToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(0), st.Snapshot().SelectedOrderID)
}

func TestResolveStaffCallEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dinein/staff-calls/1/resolve", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r, st := setupConsole(t, mux)
	st.ReplaceTables([]models.Table{{ID: 1, TableNumber: "1"}}, 1)
	st.AddStaffCall(models.StaffCall{TableID: 1, CallTime: "a"})

	w := doRequest(r, http.MethodPost, "/api/tables/1/staff-call/resolve", staffToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, st.Snapshot().StaffCalls)
}
