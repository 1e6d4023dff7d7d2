package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

// Error validasi transisi. Semuanya memblokir submission di sisi console,
// sebelum ada request yang dikirim ke backend.
var (
	ErrUnknownOrder      = errors.New("order not found in working set")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrReasonRequired    = errors.New("cancel reason is required")
	ErrProofRequired     = errors.New("proof of transfer image is required")
	ErrConfirmRequired   = errors.New("explicit confirmation required")
)

// TransitionRequest adalah satu permintaan transisi status dari staff.
type TransitionRequest struct {
	OrderID      uint   `json:"orderId"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	CancelReason string `json:"cancelReason,omitempty"`
	ProofImage   string `json:"proofImage,omitempty"`
	Confirm      bool   `json:"confirm"`

	// ActorID adalah staff yang melakukan aksi, diambil dari token.
	ActorID uint `json:"-"`
}

// TransitionCheck adalah hasil langkah pertama dari konfirmasi dua tahap.
type TransitionCheck struct {
	OrderID         uint   `json:"orderId"`
	From            string `json:"from"`
	To              string `json:"to"`
	RequiresConfirm bool   `json:"requiresConfirm"`
	Warning         string `json:"warning,omitempty"`
}

// StatusController memvalidasi dan mengeksekusi transisi status order
// terhadap state machine masing-masing channel.
type StatusController struct {
	client     *client.RestClient
	store      *store.Store
	reconciler *Reconciler
}

func NewStatusController(rc *client.RestClient, st *store.Store, reconciler *Reconciler) *StatusController {
	return &StatusController{client: rc, store: st, reconciler: reconciler}
}

// Prepare memvalidasi transisi dan mengembalikan kebutuhan konfirmasi
// tambahan (mis. order milik staff lain). Tidak ada request yang dikirim.
func (sc *StatusController) Prepare(req TransitionRequest) (*TransitionCheck, error) {
	order, ok := sc.store.GetOrder(req.OrderID)
	if !ok {
		return nil, ErrUnknownOrder
	}

	if !models.CanTransition(order.OrderType, order.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, order.OrderType, order.Status, req.Status)
	}

	if req.Status == models.StatusCancelled && strings.TrimSpace(req.CancelReason) == "" {
		return nil, ErrReasonRequired
	}

	// Takeaway PENDING -> PAID butuh bukti transfer kecuali bayar tunai
	if order.OrderType == models.OrderTypeTakeaway &&
		order.Status == models.StatusPending &&
		req.Status == models.StatusPaid &&
		order.PaymentMethod != models.PaymentMethodCash &&
		strings.TrimSpace(req.ProofImage) == "" {
		return nil, ErrProofRequired
	}

	check := &TransitionCheck{
		OrderID: order.ID,
		From:    order.Status,
		To:      req.Status,
	}

	// Staff lain boleh mengubah order yang bukan miliknya, tapi harus
	// lewat peringatan eksplisit dulu, bukan blokir keras
	if order.StaffID != 0 && req.ActorID != 0 && order.StaffID != req.ActorID {
		check.RequiresConfirm = true
		owner := order.StaffName
		if owner == "" {
			owner = fmt.Sprintf("staff #%d", order.StaffID)
		}
		check.Warning = fmt.Sprintf("Order %s is handled by %s, confirm to proceed", order.OrderNumber, owner)
	}

	return check, nil
}

// Commit mengeksekusi transisi sebagai satu request idempotent setelah
// tahap konfirmasi. Status balasan server diadopsi ke store.
func (sc *StatusController) Commit(req TransitionRequest) (*models.Order, error) {
	check, err := sc.Prepare(req)
	if err != nil {
		return nil, err
	}
	if check.RequiresConfirm && !req.Confirm {
		return nil, ErrConfirmRequired
	}

	order, _ := sc.store.GetOrder(req.OrderID)

	var updated *models.Order
	switch order.OrderType {
	case models.OrderTypeDelivery:
		updated, err = sc.client.UpdateDeliveryStatus(order.ID, req.Status, req.Note, req.CancelReason)
	default:
		updated, err = sc.client.UpdateOrderStatus(order.ID, req.Status)
	}

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			// Order mungkin sudah dihapus/diselesaikan di tempat lain;
			// reconcile untuk menyamakan working set
			utils.ErrorLogger.Printf("Order %d not found on transition, reconciling: %v", req.OrderID, err)
			go sc.reconciler.Reconcile()
			return nil, err
		}
		if errors.Is(err, client.ErrForbidden) {
			// 403 di-surface tanpa mutasi lokal
			return nil, err
		}
		return nil, err
	}

	updated.Version = time.Now().UnixMilli()
	sc.store.ApplyOrder(*updated)
	utils.InfoLogger.Printf("Order %d transitioned %s -> %s by staff %d", order.ID, check.From, updated.Status, req.ActorID)
	return updated, nil
}

// ResolveStaffCall menyelesaikan panggilan staff sebuah meja dan
// menghapus record-nya dari store.
func (sc *StatusController) ResolveStaffCall(tableID uint) error {
	if err := sc.client.ResolveStaffCall(tableID); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			go sc.reconciler.Reconcile()
		}
		return err
	}
	table, _ := sc.store.GetTable(tableID)
	sc.store.RemoveStaffCalls(tableID, table.TableNumber)
	return nil
}

// ResolvePaymentRequest menyelesaikan permintaan tagihan sebuah meja.
func (sc *StatusController) ResolvePaymentRequest(tableID uint) error {
	if err := sc.client.ResolvePaymentRequest(tableID); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			go sc.reconciler.Reconcile()
		}
		return err
	}
	table, _ := sc.store.GetTable(tableID)
	sc.store.RemovePaymentRequests(tableID, table.TableNumber)
	return nil
}
