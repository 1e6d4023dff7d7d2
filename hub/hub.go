package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
)

// Event types yang dikirim ke browser staff
const (
	EventStateSync  = "state_sync"
	EventTableViews = "table_views"
	EventStaffNotif = "staff_notification"
	EventOrderAlert = "order_alert"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// StaffHub menampung semua browser staff yang terhubung dan
// menyiarkan hasil proyeksi store ke semuanya.
type StaffHub struct {
	clients map[*websocket.Conn]string // conn -> staff name
	mutex   sync.Mutex
}

var staffHub = StaffHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection staff ke set
func RegisterClient(conn *websocket.Conn, staffName string) {
	staffHub.mutex.Lock()
	defer staffHub.mutex.Unlock()
	staffHub.clients[conn] = staffName
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	staffHub.mutex.Lock()
	defer staffHub.mutex.Unlock()
	delete(staffHub.clients, conn)
	conn.Close()
}

// BroadcastStateSync -> menyiarkan hasil proyeksi penuh
func BroadcastStateSync(view *store.ViewState) {
	broadcast(Message{
		Event: EventStateSync,
		Data:  view,
	})
}

// BroadcastTableViews -> update view meja saja
func BroadcastTableViews(tables []store.TableView) {
	broadcast(Message{
		Event: EventTableViews,
		Data:  tables,
	})
}

// BroadcastStaffNotification -> notifikasi teks untuk staff
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// BroadcastOrderAlert -> alert untuk satu order (mis. cancel gagal)
func BroadcastOrderAlert(orderID uint, message string) {
	broadcast(Message{
		Event: EventOrderAlert,
		Data: map[string]interface{}{
			"order_id": orderID,
			"message":  message,
		},
	})
}

// broadcast -> fungsi internal untuk mengirim pesan ke semua client
func broadcast(msg Message) {
	staffHub.mutex.Lock()
	defer staffHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range staffHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
