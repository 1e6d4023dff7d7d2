package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

// AutoCancelReason adalah alasan yang dikirim saat auto-cancel.
const AutoCancelReason = "Payment timeout - Order automatically cancelled"

// PaymentTimer menjalankan countdown per order selama statusnya masih
// WAITING_PAYMENT dan meng-cancel tepat satu kali saat tenggat lewat.
// Server tetap otoritatif: status balasan server selalu diadopsi,
// termasuk kalau server melaporkan PAID di tengah race.
type PaymentTimer struct {
	client *client.RestClient
	store  *store.Store

	// Notify dipanggil saat cancel gagal permanen; di-wire ke hub staff.
	Notify func(message string)

	Timeout           time.Duration
	TickInterval      time.Duration
	RecheckInterval   time.Duration
	RetryInterval     time.Duration
	MaxCancelAttempts int

	mutex      sync.Mutex
	watchers   map[uint]chan struct{}
	fired      map[uint]bool
	attempts   map[uint]int
	retryQueue []uint

	StopChan chan struct{}
}

func NewPaymentTimer(rc *client.RestClient, st *store.Store) *PaymentTimer {
	return &PaymentTimer{
		client:            rc,
		store:             st,
		Timeout:           20 * time.Minute,
		TickInterval:      time.Second,
		RecheckInterval:   30 * time.Second,
		RetryInterval:     30 * time.Second,
		MaxCancelAttempts: 5,
		watchers:          make(map[uint]chan struct{}),
		fired:             make(map[uint]bool),
		attempts:          make(map[uint]int),
		retryQueue:        make([]uint, 0),
		StopChan:          make(chan struct{}),
	}
}

// Start mendaftarkan listener store dan goroutine retry queue.
func (pt *PaymentTimer) Start() {
	pt.store.Subscribe(func(snap *store.Snapshot) {
		pt.syncWatchers(snap)
	})
	pt.syncWatchers(pt.store.Snapshot())

	go pt.processRetryQueue()
	log.Println("Payment lifecycle timer started")
}

// Stop menghentikan semua watcher dan retry queue.
func (pt *PaymentTimer) Stop() {
	close(pt.StopChan)
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	for id, stop := range pt.watchers {
		close(stop)
		delete(pt.watchers, id)
	}
}

// syncWatchers memastikan setiap order WAITING_PAYMENT punya tepat satu
// watcher, dan watcher order yang sudah keluar dari status itu berhenti.
func (pt *PaymentTimer) syncWatchers(snap *store.Snapshot) {
	select {
	case <-pt.StopChan:
		return
	default:
	}

	waiting := make(map[uint]bool)
	for _, order := range snap.Orders {
		if order.Status == models.StatusWaitingPayment {
			waiting[order.ID] = true
		}
	}

	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	for id := range waiting {
		if _, exists := pt.watchers[id]; !exists {
			stop := make(chan struct{})
			pt.watchers[id] = stop
			go pt.watch(id, stop)
		}
	}
	for id, stop := range pt.watchers {
		if !waiting[id] {
			close(stop)
			delete(pt.watchers, id)
		}
	}
}

// watch adalah countdown satu order: tick 1 detik memeriksa sisa waktu,
// ticker 30 detik menanyakan status ke server untuk menangkap pembayaran
// yang dikonfirmasi lewat webhook di sisi server.
func (pt *PaymentTimer) watch(orderID uint, stop chan struct{}) {
	tick := time.NewTicker(pt.TickInterval)
	defer tick.Stop()
	recheck := time.NewTicker(pt.RecheckInterval)
	defer recheck.Stop()

	for {
		select {
		case <-tick.C:
			order, ok := pt.store.GetOrder(orderID)
			if !ok || order.Status != models.StatusWaitingPayment {
				return
			}
			if order.CreatedAt.IsZero() {
				// Order hasil sintesis push belum membawa createdAt;
				// countdown menunggu recheck/poll mengisinya
				continue
			}
			remaining := pt.Timeout - time.Since(order.CreatedAt)
			if remaining <= 0 {
				pt.fireCancel(orderID)
			}
		case <-recheck.C:
			pt.recheckStatus(orderID)
		case <-stop:
			return
		case <-pt.StopChan:
			return
		}
	}
}

// recheckStatus mengambil status order dari server dan mengadopsinya.
func (pt *PaymentTimer) recheckStatus(orderID uint) {
	order, err := pt.client.FetchPaymentStatus(orderID)
	if err != nil {
		log.Printf("Failed to recheck payment status of order %d: %v", orderID, err)
		return
	}
	order.Version = time.Now().UnixMilli()
	pt.store.ApplyOrder(*order)
}

// fireCancel menembakkan cancel maksimal satu kali per order id,
// berapa kali pun tick lewat nol (termasuk setelah tab suspend/resume).
func (pt *PaymentTimer) fireCancel(orderID uint) {
	pt.mutex.Lock()
	if pt.fired[orderID] {
		pt.mutex.Unlock()
		return
	}
	pt.fired[orderID] = true
	pt.mutex.Unlock()

	utils.InfoLogger.Printf("Payment window of order %d expired, cancelling", orderID)
	pt.attemptCancel(orderID)
}

// attemptCancel mengirim permintaan cancel dan mengadopsi status balasan
// server apa adanya. Kegagalan masuk retry queue sampai batas percobaan.
func (pt *PaymentTimer) attemptCancel(orderID uint) {
	server, err := pt.client.CancelOrder(orderID, AutoCancelReason)
	if err != nil {
		pt.handleCancelFailure(orderID, err)
		return
	}

	// Status server final, walaupun itu PAID dan bukan CANCELLED
	server.Version = time.Now().UnixMilli()
	pt.store.ApplyOrder(*server)
	utils.InfoLogger.Printf("Order %d resolved as %s after payment timeout", orderID, server.Status)
}

func (pt *PaymentTimer) handleCancelFailure(orderID uint, err error) {
	pt.mutex.Lock()
	pt.attempts[orderID]++
	attempts := pt.attempts[orderID]
	pt.mutex.Unlock()

	if attempts >= pt.MaxCancelAttempts {
		// Order tak terbayar tidak boleh dibiarkan menggantung diam-diam
		utils.ErrorLogger.Printf("Giving up auto-cancel of order %d after %d attempts: %v", orderID, attempts, err)
		pt.store.MarkCancelFailed(orderID)
		if pt.Notify != nil {
			pt.Notify(fmt.Sprintf("Auto-cancel of order %d failed, manual action required", orderID))
		}
		return
	}

	utils.ErrorLogger.Printf("Auto-cancel of order %d failed (attempt %d): %v", orderID, attempts, err)
	pt.addToRetryQueue(orderID)
}

// addToRetryQueue menambahkan order id ke antrian retry tanpa duplikat.
func (pt *PaymentTimer) addToRetryQueue(orderID uint) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	for _, id := range pt.retryQueue {
		if id == orderID {
			return
		}
	}
	pt.retryQueue = append(pt.retryQueue, orderID)
	log.Printf("Added order %d to cancel retry queue", orderID)
}

// processRetryQueue memproses antrian retry pada interval tetap.
func (pt *PaymentTimer) processRetryQueue() {
	ticker := time.NewTicker(pt.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pt.drainRetryQueue()
		case <-pt.StopChan:
			return
		}
	}
}

func (pt *PaymentTimer) drainRetryQueue() {
	pt.mutex.Lock()
	if len(pt.retryQueue) == 0 {
		pt.mutex.Unlock()
		return
	}
	queue := make([]uint, len(pt.retryQueue))
	copy(queue, pt.retryQueue)
	pt.retryQueue = pt.retryQueue[:0]
	pt.mutex.Unlock()

	log.Printf("Processing cancel retry queue with %d orders", len(queue))
	for _, orderID := range queue {
		// Kalau server sudah mengkonfirmasi pembayaran di antara retry,
		// cancel tidak perlu lagi
		order, ok := pt.store.GetOrder(orderID)
		if !ok || order.Status != models.StatusWaitingPayment {
			log.Printf("Order %d no longer waiting payment, skipping cancel retry", orderID)
			continue
		}
		pt.attemptCancel(orderID)
	}
}
