package services

import (
	"log"
	"time"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

// Reconciler menarik snapshot penuh dari backend secara periodik dan
// menggabungkannya ke store. Event push yang hilang selama disconnect
// ditambal oleh pass berikutnya.
type Reconciler struct {
	client   *client.RestClient
	store    *store.Store
	Interval time.Duration
	StopChan chan struct{}
}

func NewReconciler(rc *client.RestClient, st *store.Store) *Reconciler {
	return &Reconciler{
		client:   rc,
		store:    st,
		Interval: 30 * time.Second,
		StopChan: make(chan struct{}),
	}
}

// Start menjalankan pass reconcile pada interval tetap.
func (r *Reconciler) Start() {
	go func() {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()

		r.Reconcile()
		for {
			select {
			case <-ticker.C:
				r.Reconcile()
			case <-r.StopChan:
				return
			}
		}
	}()
	log.Println("Polling reconciler started")
}

func (r *Reconciler) Stop() {
	close(r.StopChan)
}

// Reconcile menjalankan satu pass penuh. Setiap fetch berdiri sendiri:
// kegagalan satu fetch tidak membatalkan sisanya, store tetap memegang
// snapshot terakhir untuk bagian yang gagal.
func (r *Reconciler) Reconcile() {
	passVersion := time.Now().UnixMilli()

	tables, err := r.client.FetchTables()
	if err != nil {
		utils.ErrorLogger.Printf("Reconcile: failed to fetch tables: %v", err)
	} else {
		stampTables(tables, passVersion)
		r.store.ReplaceTables(tables, passVersion)

		// Fetch order per meja. Kegagalan satu meja hanya mengosongkan
		// daftar order meja itu, bukan membatalkan pass.
		for _, table := range tables {
			orders, err := r.client.FetchTableOrders(table.TableNumber)
			if err != nil {
				utils.ErrorLogger.Printf("Reconcile: failed to fetch orders of table %s: %v", table.TableNumber, err)
				orders = []models.Order{}
			}
			stampOrders(orders, passVersion)
			r.store.ReplaceTableOrders(table.ID, orders, passVersion)
		}
	}

	orders, err := r.client.FetchAllOrders()
	if err != nil {
		utils.ErrorLogger.Printf("Reconcile: failed to fetch orders: %v", err)
	} else {
		stampOrders(orders, passVersion)
		r.store.ReplaceOrders(orders, passVersion)
	}

	sessions, err := r.client.FetchSessions()
	if err != nil {
		utils.ErrorLogger.Printf("Reconcile: failed to fetch sessions: %v", err)
	} else {
		r.store.ReplaceSessions(*sessions)
	}
}

// stampOrders memberi versi ke entity hasil poll: updatedAt server jika ada,
// fallback ke waktu mulai pass.
func stampOrders(orders []models.Order, passVersion int64) {
	for i := range orders {
		if !orders[i].UpdatedAt.IsZero() {
			orders[i].Version = orders[i].UpdatedAt.UnixMilli()
		} else {
			orders[i].Version = passVersion
		}
	}
}

func stampTables(tables []models.Table, passVersion int64) {
	for i := range tables {
		if tables[i].Version == 0 {
			tables[i].Version = passVersion
		}
		stampOrders(tables[i].Orders, passVersion)
	}
}
