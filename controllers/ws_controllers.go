package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nnhatnam05/pizza-dolce-staff-console/hub"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// StaffSocketHandler -> endpoint WebSocket untuk browser staff.
// Setelah upgrade, client langsung menerima state_sync pertama.
func StaffSocketHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := ""
		if value, exists := c.Get("staffName"); exists {
			name = value.(string)
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.RegisterClient(ws, name)
		hub.BroadcastStateSync(store.Project(st.Snapshot()))

		// Baca pesan hanya untuk mendeteksi disconnect
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.UnregisterClient(ws)
	}
}
