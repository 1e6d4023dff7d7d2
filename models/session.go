package models

import "fmt"

// StaffCall adalah permintaan bantuan dari customer di sebuah meja.
type StaffCall struct {
	TableID     uint   `json:"tableId"`
	TableNumber string `json:"tableNumber,omitempty"`
	Reason      string `json:"reason,omitempty"`
	CallTime    string `json:"callTime"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// PaymentRequest adalah permintaan tagihan dari customer di sebuah meja.
type PaymentRequest struct {
	TableID     uint   `json:"tableId"`
	TableNumber string `json:"tableNumber,omitempty"`
	RequestTime string `json:"requestTime"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// DedupKey -> kunci unik untuk deteksi event duplikat
func (s StaffCall) DedupKey() string {
	return fmt.Sprintf("%d|%s", s.TableID, s.CallTime)
}

// DedupKey -> kunci unik untuk deteksi event duplikat
func (p PaymentRequest) DedupKey() string {
	return fmt.Sprintf("%d|%s", p.TableID, p.RequestTime)
}

// SessionSnapshot adalah hasil fetch gabungan dari endpoint sessions.
type SessionSnapshot struct {
	StaffCalls      []StaffCall      `json:"staffCalls"`
	PaymentRequests []PaymentRequest `json:"paymentRequests"`
}
