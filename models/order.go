package models

import (
	"strconv"
	"strings"
	"time"
)

// Tipe order (channel)
const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// Status order untuk channel delivery
const (
	StatusWaitingPayment    = "WAITING_PAYMENT"
	StatusPaid              = "PAID"
	StatusPreparing         = "PREPARING"
	StatusWaitingForShipper = "WAITING_FOR_SHIPPER"
	StatusDelivering        = "DELIVERING"
	StatusDelivered         = "DELIVERED"
	StatusCancelled         = "CANCELLED"
)

// Status order untuk channel dine-in
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusReady      = "READY"
	StatusServed     = "SERVED"
	StatusCompleted  = "COMPLETED"
)

// Status order untuk channel takeaway
const (
	StatusPending = "PENDING"
)

// Metode pembayaran
const (
	PaymentMethodCash      = "CASH"
	PaymentMethodQRBanking = "QR_BANKING"
	PaymentMethodCard      = "CARD"
)

type Order struct {
	ID             uint        `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	OrderType      string      `json:"orderType"`
	Status         string      `json:"status"`
	DeliveryStatus string      `json:"deliveryStatus,omitempty"`
	TotalPrice     float64     `json:"totalPrice"`
	PaymentMethod  string      `json:"paymentMethod,omitempty"`
	StaffID        uint        `json:"staffId,omitempty"`
	StaffName      string      `json:"staffName,omitempty"`
	TableID        *uint       `json:"tableId,omitempty"`
	TableNumber    string      `json:"tableNumber,omitempty"`
	OrderItems     []OrderItem `json:"orderItems"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`

	// CancelFailed ditandai ketika auto-cancel gagal setelah semua retry
	CancelFailed bool `json:"cancelFailed,omitempty"`

	// Version dipakai store untuk merge antar sumber (unix millis)
	Version int64 `json:"-"`
}

type OrderItem struct {
	ID       uint    `json:"id"`
	OrderID  uint    `json:"orderId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes,omitempty"`
}

// IsTerminal -> true jika order sudah keluar dari working set aktif
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCancelled, StatusDelivered:
		return true
	case StatusPaid:
		// PAID hanya terminal untuk dine-in; pembayaran di-settle per meja
		return o.OrderType == OrderTypeDineIn
	}
	return false
}

// SameTableNumber membandingkan nomor meja dari sumber yang berbeda.
// Sumber upstream tidak konsisten: sebagian mengirim string, sebagian angka.
func SameTableNumber(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	return errA == nil && errB == nil && na == nb
}
