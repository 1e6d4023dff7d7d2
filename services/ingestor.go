package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

// envelope adalah amplop pesan push dari backend:
// {data, message, timestamp} atau langsung body notifikasinya.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Timestamp int64           `json:"timestamp"`
}

// EventIngestor menormalkan pesan push menjadi mutasi store.
// Semua kegagalan parsing hanya membuang pesan itu saja; handler
// tidak pernah melempar error keluar.
type EventIngestor struct {
	store *store.Store
}

func NewEventIngestor(st *store.Store) *EventIngestor {
	return &EventIngestor{store: st}
}

// Ingest memproses satu pesan push per topik.
func (ei *EventIngestor) Ingest(topic string, raw []byte) {
	payload, ok := normalizePayload(raw)
	if !ok {
		log.Printf("Dropping unparseable message on %s", topic)
		return
	}

	switch topic {
	case client.TopicStaffOrders, client.TopicPaymentConfirmed:
		ei.ingestOrder(payload)
	case client.TopicStaffCalls:
		ei.ingestStaffCall(payload)
	case client.TopicStaffPayments:
		ei.ingestPaymentRequest(payload)
	case client.TopicStaffTables:
		ei.ingestTable(payload)
	default:
		log.Printf("Ignoring message on unknown topic %s", topic)
	}
}

// normalizePayload menangani payload yang bisa berupa object JSON
// atau string JSON yang di-encode dua kali.
func normalizePayload(raw []byte) ([]byte, bool) {
	if !json.Valid(raw) {
		return nil, false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		inner := []byte(asString)
		if !json.Valid(inner) {
			return nil, false
		}
		return inner, true
	}
	return raw, true
}

// eventBody mengekstrak body notifikasi: field data bersarang jika ada,
// fallback ke payload mentah.
func eventBody(payload []byte) ([]byte, int64) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err == nil && len(env.Data) > 0 {
		body := env.Data
		// data bisa juga berupa string JSON
		if normalized, ok := normalizePayload(env.Data); ok {
			body = normalized
		}
		return body, env.Timestamp
	}
	return payload, 0
}

func (ei *EventIngestor) ingestOrder(payload []byte) {
	body, timestamp := eventBody(payload)

	var order models.Order
	if err := json.Unmarshal(body, &order); err != nil {
		log.Printf("Dropping malformed order event: %v", err)
		return
	}
	if order.ID == 0 {
		log.Println("Dropping order event without id")
		return
	}

	order.Version = versionFrom(timestamp)
	ei.store.ApplyOrder(order)
}

func (ei *EventIngestor) ingestStaffCall(payload []byte) {
	body, timestamp := eventBody(payload)

	var call models.StaffCall
	if err := json.Unmarshal(body, &call); err != nil {
		log.Printf("Dropping malformed staff call event: %v", err)
		return
	}
	if call.TableID == 0 && call.TableNumber == "" {
		log.Println("Dropping staff call event without table reference")
		return
	}
	if call.Timestamp == 0 {
		call.Timestamp = timestamp
	}

	if ei.store.AddStaffCall(call) {
		utils.InfoLogger.Printf("Staff call from table %s (id %d)", call.TableNumber, call.TableID)
	}
}

func (ei *EventIngestor) ingestPaymentRequest(payload []byte) {
	body, timestamp := eventBody(payload)

	var request models.PaymentRequest
	if err := json.Unmarshal(body, &request); err != nil {
		log.Printf("Dropping malformed payment request event: %v", err)
		return
	}
	if request.TableID == 0 && request.TableNumber == "" {
		log.Println("Dropping payment request event without table reference")
		return
	}
	if request.Timestamp == 0 {
		request.Timestamp = timestamp
	}

	if ei.store.AddPaymentRequest(request) {
		utils.InfoLogger.Printf("Payment request from table %s (id %d)", request.TableNumber, request.TableID)
	}
}

func (ei *EventIngestor) ingestTable(payload []byte) {
	body, timestamp := eventBody(payload)

	var table models.Table
	if err := json.Unmarshal(body, &table); err != nil {
		log.Printf("Dropping malformed table event: %v", err)
		return
	}
	if table.ID == 0 {
		log.Println("Dropping table event without id")
		return
	}

	table.Version = versionFrom(timestamp)
	// Meja yang belum dikenal dibuang di store; provisioning lewat polling
	ei.store.ApplyTable(table)
}

func versionFrom(timestamp int64) int64 {
	if timestamp > 0 {
		return timestamp
	}
	return time.Now().UnixMilli()
}
