package store

import "github.com/nnhatnam05/pizza-dolce-staff-console/models"

// Status tampilan meja hasil proyeksi, urutan precedence dari tertinggi:
// NEEDS_ASSISTANCE > OCCUPIED > RESERVED/CLEANING > AVAILABLE.
const (
	DisplayNeedsAssistance = "NEEDS_ASSISTANCE"
	DisplayOccupied        = "OCCUPIED"
	DisplayReserved        = "RESERVED"
	DisplayCleaning        = "CLEANING"
	DisplayAvailable       = "AVAILABLE"
)

// TableView adalah state read-only satu meja untuk UI staff.
type TableView struct {
	Table             models.Table   `json:"table"`
	ActiveOrders      []models.Order `json:"activeOrders"`
	HasStaffCall      bool           `json:"hasStaffCall"`
	HasPaymentRequest bool           `json:"hasPaymentRequest"`
	DisplayStatus     string         `json:"displayStatus"`
}

// Badges adalah hitungan notifikasi agregat di header UI.
type Badges struct {
	StaffCalls      int `json:"staffCalls"`
	PaymentRequests int `json:"paymentRequests"`
	NewDineIn       int `json:"newDineIn"`
}

// ViewState adalah keseluruhan hasil proyeksi dari satu snapshot.
type ViewState struct {
	Tables []TableView `json:"tables"`
	Badges Badges      `json:"badges"`
}

// matchesTable mencocokkan notifikasi ke meja lewat dua kunci sekaligus:
// id meja atau nomor meja. Producer upstream tidak konsisten mengisi
// identifier yang mana, jadi keduanya harus dicoba.
func matchesTable(table models.Table, tableID uint, tableNumber string) bool {
	if tableID != 0 && tableID == table.ID {
		return true
	}
	return models.SameTableNumber(tableNumber, table.TableNumber)
}

// Project menghitung view state murni dari snapshot, tanpa efek samping.
func Project(snap *Snapshot) *ViewState {
	view := &ViewState{
		Tables: make([]TableView, 0, len(snap.Tables)),
	}

	for _, table := range snap.Tables {
		tv := TableView{Table: table}

		for _, order := range table.Orders {
			if order.IsTerminal() {
				continue
			}
			tv.ActiveOrders = append(tv.ActiveOrders, order)
		}

		for _, call := range snap.StaffCalls {
			if matchesTable(table, call.TableID, call.TableNumber) {
				tv.HasStaffCall = true
				break
			}
		}
		for _, request := range snap.PaymentRequests {
			if matchesTable(table, request.TableID, request.TableNumber) {
				tv.HasPaymentRequest = true
				break
			}
		}

		switch {
		case tv.HasStaffCall || tv.HasPaymentRequest:
			tv.DisplayStatus = DisplayNeedsAssistance
		case len(tv.ActiveOrders) > 0:
			tv.DisplayStatus = DisplayOccupied
		case table.Status == models.TableReserved:
			tv.DisplayStatus = DisplayReserved
		case table.Status == models.TableCleaning:
			tv.DisplayStatus = DisplayCleaning
		default:
			tv.DisplayStatus = DisplayAvailable
		}

		view.Tables = append(view.Tables, tv)
	}

	view.Badges.StaffCalls = len(snap.StaffCalls)
	view.Badges.PaymentRequests = len(snap.PaymentRequests)
	for _, order := range snap.Orders {
		if order.OrderType == models.OrderTypeDineIn && order.Status == models.StatusNew {
			view.Badges.NewDineIn++
		}
	}

	return view
}
