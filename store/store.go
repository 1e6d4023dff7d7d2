package store

import (
	"sync"

	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
)

// Batas jumlah notifikasi yang disimpan per koleksi
const maxNotifications = 50

// Snapshot adalah state kanonik yang dilihat satu kali render.
// Snapshot bersifat immutable: setiap mutasi membuat snapshot baru,
// snapshot lama tetap konsisten untuk pembaca yang masih memegangnya.
type Snapshot struct {
	Tables          []models.Table          `json:"tables"`
	Orders          []models.Order          `json:"orders"`
	StaffCalls      []models.StaffCall      `json:"staffCalls"`
	PaymentRequests []models.PaymentRequest `json:"paymentRequests"`

	// SelectedOrderID adalah order yang sedang dibuka staff di UI.
	// 0 berarti tidak ada seleksi.
	SelectedOrderID uint `json:"selectedOrderId,omitempty"`
}

// Listener dipanggil setelah setiap update dengan snapshot terbaru.
type Listener func(*Snapshot)

// Store menampung snapshot aktif dan listener-nya. Semua penulis
// (ingestor, reconciler, timer, controller) masuk lewat mutex yang sama.
type Store struct {
	mu        sync.RWMutex
	snap      *Snapshot
	listeners []Listener
}

func NewStore() *Store {
	return &Store{snap: &Snapshot{}}
}

// Subscribe menambahkan listener untuk setiap perubahan snapshot.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot mengembalikan snapshot aktif. Pembaca tidak boleh memodifikasi
// isinya; penulis selalu membuat salinan lewat update().
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// update menjalankan mutasi di atas salinan snapshot dan menukar
// referensinya secara atomik (copy-on-write).
func (s *Store) update(mutate func(next *Snapshot)) {
	s.mu.Lock()
	next := s.snap.clone()
	mutate(next)
	if next.SelectedOrderID != 0 && findOrder(next.Orders, next.SelectedOrderID) == nil {
		// Seleksi yang tidak lagi resolve harus dibersihkan,
		// bukan dibiarkan menunjuk data basi
		next.SelectedOrderID = 0
	}
	s.snap = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func (snap *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		Tables:          make([]models.Table, len(snap.Tables)),
		Orders:          make([]models.Order, len(snap.Orders)),
		StaffCalls:      make([]models.StaffCall, len(snap.StaffCalls)),
		PaymentRequests: make([]models.PaymentRequest, len(snap.PaymentRequests)),
		SelectedOrderID: snap.SelectedOrderID,
	}
	copy(next.Orders, snap.Orders)
	copy(next.StaffCalls, snap.StaffCalls)
	copy(next.PaymentRequests, snap.PaymentRequests)
	for i, table := range snap.Tables {
		orders := make([]models.Order, len(table.Orders))
		copy(orders, table.Orders)
		table.Orders = orders
		next.Tables[i] = table
	}
	return next
}

func findOrder(orders []models.Order, id uint) *models.Order {
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}

// mergeOrder menggabungkan order masuk dengan yang sudah ada.
// Versi lebih besar menang; pada versi sama penulis terbaru menang,
// kecuali status tidak pernah boleh mundur dalam lifecycle channel-nya.
func mergeOrder(existing, incoming models.Order) models.Order {
	if incoming.Version < existing.Version {
		// Data masuk lebih tua, pertahankan yang ada
		return existing
	}

	merged := incoming
	if merged.OrderType == "" {
		merged.OrderType = existing.OrderType
	}
	if merged.OrderNumber == "" {
		merged.OrderNumber = existing.OrderNumber
	}
	if merged.TableNumber == "" {
		merged.TableNumber = existing.TableNumber
	}
	if merged.TableID == nil {
		merged.TableID = existing.TableID
	}
	if merged.PaymentMethod == "" {
		merged.PaymentMethod = existing.PaymentMethod
	}
	if merged.StaffID == 0 {
		merged.StaffID = existing.StaffID
		merged.StaffName = existing.StaffName
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = existing.CreatedAt
	}
	if len(merged.OrderItems) == 0 {
		merged.OrderItems = existing.OrderItems
	}
	if existing.CancelFailed {
		merged.CancelFailed = true
	}

	oldRank := models.LifecycleRank(merged.OrderType, existing.Status)
	newRank := models.LifecycleRank(merged.OrderType, merged.Status)
	if merged.Status == "" || (oldRank > 0 && newRank > 0 && newRank < oldRank) {
		merged.Status = existing.Status
	}
	if merged.DeliveryStatus == "" {
		merged.DeliveryStatus = existing.DeliveryStatus
	}
	return merged
}

// ApplyOrder melakukan shallow-merge order dari push event. Order yang belum
// dikenal disintesis dan di-prepend; jika punya nomor meja, ikut digabungkan
// ke daftar order meja tersebut.
func (s *Store) ApplyOrder(incoming models.Order) {
	s.update(func(next *Snapshot) {
		if existing := findOrder(next.Orders, incoming.ID); existing != nil {
			*existing = mergeOrder(*existing, incoming)
		} else {
			next.Orders = append([]models.Order{incoming}, next.Orders...)
		}
		applyOrderToTables(next, incoming)
	})
}

func applyOrderToTables(next *Snapshot, incoming models.Order) {
	for i := range next.Tables {
		table := &next.Tables[i]
		matched := false
		if incoming.TableID != nil && *incoming.TableID == table.ID {
			matched = true
		} else if models.SameTableNumber(incoming.TableNumber, table.TableNumber) {
			matched = true
		}
		if !matched {
			continue
		}
		if existing := findOrder(table.Orders, incoming.ID); existing != nil {
			*existing = mergeOrder(*existing, incoming)
		} else {
			table.Orders = append([]models.Order{incoming}, table.Orders...)
		}
		return
	}
}

// ApplyTable menggabungkan update meja dari push event. Meja yang tidak
// dikenal dibuang: provisioning meja hanya lewat polling/CRUD.
func (s *Store) ApplyTable(incoming models.Table) {
	s.update(func(next *Snapshot) {
		for i := range next.Tables {
			table := &next.Tables[i]
			if table.ID != incoming.ID {
				continue
			}
			if incoming.Version < table.Version {
				return
			}
			merged := incoming
			if merged.TableNumber == "" {
				merged.TableNumber = table.TableNumber
			}
			if merged.Status == "" {
				merged.Status = table.Status
			}
			if merged.Capacity == 0 {
				merged.Capacity = table.Capacity
			}
			if merged.Location == "" {
				merged.Location = table.Location
			}
			if len(merged.Orders) == 0 {
				merged.Orders = table.Orders
			}
			*table = merged
			return
		}
	})
}

// AddStaffCall menambahkan staff call baru. Mengembalikan false jika
// record dengan dedup key yang sama sudah ada.
func (s *Store) AddStaffCall(call models.StaffCall) bool {
	added := false
	s.update(func(next *Snapshot) {
		for _, existing := range next.StaffCalls {
			if existing.DedupKey() == call.DedupKey() {
				return
			}
		}
		next.StaffCalls = append([]models.StaffCall{call}, next.StaffCalls...)
		if len(next.StaffCalls) > maxNotifications {
			next.StaffCalls = next.StaffCalls[:maxNotifications]
		}
		added = true
	})
	return added
}

// AddPaymentRequest menambahkan payment request baru dengan dedup yang sama.
func (s *Store) AddPaymentRequest(request models.PaymentRequest) bool {
	added := false
	s.update(func(next *Snapshot) {
		for _, existing := range next.PaymentRequests {
			if existing.DedupKey() == request.DedupKey() {
				return
			}
		}
		next.PaymentRequests = append([]models.PaymentRequest{request}, next.PaymentRequests...)
		if len(next.PaymentRequests) > maxNotifications {
			next.PaymentRequests = next.PaymentRequests[:maxNotifications]
		}
		added = true
	})
	return added
}

// ReplaceTables mengganti koleksi meja dengan hasil poll. Meja yang punya
// update push lebih baru dari pass poll tidak boleh tertimpa.
func (s *Store) ReplaceTables(tables []models.Table, passVersion int64) {
	s.update(func(next *Snapshot) {
		merged := make([]models.Table, 0, len(tables))
		for _, incoming := range tables {
			if incoming.Version == 0 {
				incoming.Version = passVersion
			}
			kept := incoming
			for i := range next.Tables {
				existing := next.Tables[i]
				if existing.ID != incoming.ID {
					continue
				}
				if existing.Version > incoming.Version {
					// Push event lebih baru menang atas snapshot poll;
					// daftar order tetap diambil dari hasil fetch
					kept = existing
					if len(incoming.Orders) > 0 || existing.Orders == nil {
						kept.Orders = incoming.Orders
					}
				}
				break
			}
			merged = append(merged, kept)
		}
		next.Tables = merged
	})
}

// ReplaceOrders mengganti koleksi order global dengan hasil poll,
// per entity tetap keep-greater terhadap versi yang sudah ada.
// Order hasil push yang lebih baru dari pass poll tetap dipertahankan
// walaupun belum muncul di snapshot server.
func (s *Store) ReplaceOrders(orders []models.Order, passVersion int64) {
	s.update(func(next *Snapshot) {
		merged := make([]models.Order, 0, len(orders))
		seen := make(map[uint]bool, len(orders))
		for _, incoming := range orders {
			if incoming.Version == 0 {
				incoming.Version = passVersion
			}
			if existing := findOrder(next.Orders, incoming.ID); existing != nil {
				incoming = mergeOrder(*existing, incoming)
			}
			merged = append(merged, incoming)
			seen[incoming.ID] = true
		}
		for _, existing := range next.Orders {
			if !seen[existing.ID] && existing.Version > passVersion {
				merged = append(merged, existing)
			}
		}
		next.Orders = merged
	})
}

// ReplaceTableOrders mengganti daftar order milik satu meja saja.
func (s *Store) ReplaceTableOrders(tableID uint, orders []models.Order, passVersion int64) {
	s.update(func(next *Snapshot) {
		for i := range next.Tables {
			table := &next.Tables[i]
			if table.ID != tableID {
				continue
			}
			merged := make([]models.Order, 0, len(orders))
			seen := make(map[uint]bool, len(orders))
			for _, incoming := range orders {
				if incoming.Version == 0 {
					incoming.Version = passVersion
				}
				if existing := findOrder(table.Orders, incoming.ID); existing != nil {
					incoming = mergeOrder(*existing, incoming)
				}
				merged = append(merged, incoming)
				seen[incoming.ID] = true
			}
			for _, existing := range table.Orders {
				if !seen[existing.ID] && existing.Version > passVersion {
					merged = append(merged, existing)
				}
			}
			table.Orders = merged
			return
		}
	})
}

// ReplaceSessions mengganti koleksi staff call dan payment request dengan
// snapshot gabungan dari poll. Dedup key tetap ditegakkan.
func (s *Store) ReplaceSessions(snapshot models.SessionSnapshot) {
	s.update(func(next *Snapshot) {
		calls := make([]models.StaffCall, 0, len(snapshot.StaffCalls))
		seenCalls := make(map[string]bool)
		for _, call := range snapshot.StaffCalls {
			if seenCalls[call.DedupKey()] {
				continue
			}
			seenCalls[call.DedupKey()] = true
			calls = append(calls, call)
		}
		if len(calls) > maxNotifications {
			calls = calls[:maxNotifications]
		}
		next.StaffCalls = calls

		requests := make([]models.PaymentRequest, 0, len(snapshot.PaymentRequests))
		seenRequests := make(map[string]bool)
		for _, request := range snapshot.PaymentRequests {
			if seenRequests[request.DedupKey()] {
				continue
			}
			seenRequests[request.DedupKey()] = true
			requests = append(requests, request)
		}
		if len(requests) > maxNotifications {
			requests = requests[:maxNotifications]
		}
		next.PaymentRequests = requests
	})
}

// RemoveStaffCalls menghapus semua staff call milik satu meja
// (match by id maupun nomor meja) setelah di-resolve.
func (s *Store) RemoveStaffCalls(tableID uint, tableNumber string) {
	s.update(func(next *Snapshot) {
		kept := next.StaffCalls[:0]
		for _, call := range next.StaffCalls {
			if call.TableID == tableID || models.SameTableNumber(call.TableNumber, tableNumber) {
				continue
			}
			kept = append(kept, call)
		}
		next.StaffCalls = kept
	})
}

// RemovePaymentRequests menghapus semua payment request milik satu meja.
func (s *Store) RemovePaymentRequests(tableID uint, tableNumber string) {
	s.update(func(next *Snapshot) {
		kept := next.PaymentRequests[:0]
		for _, request := range next.PaymentRequests {
			if request.TableID == tableID || models.SameTableNumber(request.TableNumber, tableNumber) {
				continue
			}
			kept = append(kept, request)
		}
		next.PaymentRequests = kept
	})
}

// SelectOrder menandai order yang sedang dibuka di UI.
// Mengembalikan false jika order tidak ada.
func (s *Store) SelectOrder(orderID uint) bool {
	selected := false
	s.update(func(next *Snapshot) {
		if findOrder(next.Orders, orderID) != nil {
			next.SelectedOrderID = orderID
			selected = true
		}
	})
	return selected
}

// ClearSelection menghapus seleksi order.
func (s *Store) ClearSelection() {
	s.update(func(next *Snapshot) {
		next.SelectedOrderID = 0
	})
}

// MarkCancelFailed menandai order yang auto-cancel-nya gagal permanen.
func (s *Store) MarkCancelFailed(orderID uint) {
	s.update(func(next *Snapshot) {
		if order := findOrder(next.Orders, orderID); order != nil {
			order.CancelFailed = true
		}
	})
}

// GetOrder mengembalikan salinan order berdasarkan id.
func (s *Store) GetOrder(orderID uint) (models.Order, bool) {
	snap := s.Snapshot()
	if order := findOrder(snap.Orders, orderID); order != nil {
		return *order, true
	}
	return models.Order{}, false
}

// GetTable mengembalikan salinan meja berdasarkan id.
func (s *Store) GetTable(tableID uint) (models.Table, bool) {
	snap := s.Snapshot()
	for _, table := range snap.Tables {
		if table.ID == tableID {
			return table, true
		}
	}
	return models.Table{}, false
}
