package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T, handler http.Handler) *client.RestClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return client.NewRestClient(server.URL, func() string { return "test-token" })
}

func TestReconcileFullPass(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Table{
			{ID: 1, TableNumber: "1", Status: models.TableAvailable},
			{ID: 2, TableNumber: "2", Status: models.TableReserved},
		})
	})
	mux.HandleFunc("/dinein/table/1/all-orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{{ID: 10, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, TableNumber: "1"}})
	})
	mux.HandleFunc("/dinein/table/2/all-orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{})
	})
	mux.HandleFunc("/dinein/orders/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{{ID: 10, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, TableNumber: "1"}})
	})
	mux.HandleFunc("/dinein/sessions/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.SessionSnapshot{
			StaffCalls:      []models.StaffCall{{TableID: 1, CallTime: "a"}},
			PaymentRequests: []models.PaymentRequest{{TableID: 2, RequestTime: "b"}},
		})
	})

	st := store.NewStore()
	reconciler := NewReconciler(newBackend(t, mux), st)
	reconciler.Reconcile()

	snap := st.Snapshot()
	require.Len(t, snap.Tables, 2)
	assert.Len(t, snap.Tables[0].Orders, 1)
	assert.Empty(t, snap.Tables[1].Orders)
	assert.Len(t, snap.Orders, 1)
	assert.Len(t, snap.StaffCalls, 1)
	assert.Len(t, snap.PaymentRequests, 1)
}

func TestReconcileTableFetchFailureIsIsolated(t *testing.T) {
	// Scenario: fetch order satu meja gagal 500, meja lain tidak terpengaruh
	mux := http.NewServeMux()
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Table{
			{ID: 1, TableNumber: "1", Status: models.TableAvailable},
			{ID: 2, TableNumber: "2", Status: models.TableAvailable},
		})
	})
	mux.HandleFunc("/dinein/table/1/all-orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{{ID: 21, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, TableNumber: "1"}})
	})
	mux.HandleFunc("/dinein/table/2/all-orders", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/dinein/orders/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{})
	})
	mux.HandleFunc("/dinein/sessions/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.SessionSnapshot{})
	})

	st := store.NewStore()
	// Meja 2 punya data lama yang akan dikosongkan oleh pass yang gagal
	st.ReplaceTables([]models.Table{
		{ID: 2, TableNumber: "2", Status: models.TableAvailable,
			Orders: []models.Order{{ID: 99, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, Version: 1}}},
	}, 1)

	reconciler := NewReconciler(newBackend(t, mux), st)
	assert.NotPanics(t, func() { reconciler.Reconcile() })

	snap := st.Snapshot()
	require.Len(t, snap.Tables, 2)

	byID := make(map[uint]models.Table)
	for _, table := range snap.Tables {
		byID[table.ID] = table
	}
	assert.Len(t, byID[1].Orders, 1, "healthy table keeps its fetched data")
	assert.Empty(t, byID[2].Orders, "failed table fetch yields empty order list")
}

func TestReconcileBackendDownKeepsLastSnapshot(t *testing.T) {
	st := store.NewStore()
	st.ReplaceTables([]models.Table{{ID: 1, TableNumber: "1", Status: models.TableOccupied}}, 1)
	st.ApplyOrder(models.Order{ID: 1, OrderType: models.OrderTypeDineIn, Status: models.StatusNew, Version: 1})

	mux := http.NewServeMux() // semua endpoint 404
	reconciler := NewReconciler(newBackend(t, mux), st)
	assert.NotPanics(t, func() { reconciler.Reconcile() })

	// Degradasi ke snapshot terakhir, tidak dikosongkan
	snap := st.Snapshot()
	assert.Len(t, snap.Tables, 1)
	assert.Len(t, snap.Orders, 1)
}

func TestReconcileDoesNotClobberNewerPush(t *testing.T) {
	now := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Table{})
	})
	mux.HandleFunc("/dinein/orders/all", func(w http.ResponseWriter, r *http.Request) {
		// Snapshot server masih membawa status lama
		writeJSON(w, []models.Order{{
			ID: 1, OrderType: models.OrderTypeDelivery, Status: models.StatusWaitingPayment,
			UpdatedAt: now.Add(-time.Minute),
		}})
	})
	mux.HandleFunc("/dinein/sessions/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.SessionSnapshot{})
	})

	st := store.NewStore()
	// Push event yang lebih baru dari snapshot poll
	st.ApplyOrder(models.Order{
		ID:        1,
		OrderType: models.OrderTypeDelivery,
		Status:    models.StatusPaid,
		Version:   now.Add(time.Minute).UnixMilli(),
	})

	reconciler := NewReconciler(newBackend(t, mux), st)
	reconciler.Reconcile()

	assert.Equal(t, models.StatusPaid, st.Snapshot().Orders[0].Status)
}

func TestReconcileStartStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []models.Order{})
	})

	st := store.NewStore()
	reconciler := NewReconciler(newBackend(t, mux), st)
	reconciler.Interval = 10 * time.Millisecond
	reconciler.Start()
	time.Sleep(30 * time.Millisecond)
	reconciler.Stop()
}
