package client

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Topik push dari backend
const (
	TopicStaffOrders      = "/topic/staff/orders"
	TopicStaffCalls       = "/topic/staff/calls"
	TopicStaffPayments    = "/topic/staff/payments"
	TopicStaffTables      = "/topic/staff/tables"
	TopicPaymentConfirmed = "/topic/table/payment-confirmed"
)

// AllTopics -> semua topik yang harus di-subscribe ulang setelah reconnect
var AllTopics = []string{
	TopicStaffOrders,
	TopicStaffCalls,
	TopicStaffPayments,
	TopicStaffTables,
	TopicPaymentConfirmed,
}

// frame adalah format pesan di atas koneksi websocket backend.
// Payload diteruskan mentah ke handler; parsing isi terjadi di ingestor.
type frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type subscribeCmd struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// TopicHandler menerima payload mentah per topik. Dipanggil berurutan
// dari satu goroutine pembaca, jadi urutan FIFO per topik terjaga.
type TopicHandler func(topic string, payload []byte)

// Subscriber memelihara koneksi websocket ke backend, men-subscribe
// semua topik dan melakukan reconnect dengan backoff.
type Subscriber struct {
	URL     string
	Token   func() string
	Handler TopicHandler

	// OnReconnect dipanggil setiap koneksi berhasil dibangun ulang,
	// dipakai untuk memicu reconcile yang menambal event yang hilang.
	OnReconnect func()

	mu       sync.Mutex
	conn     *websocket.Conn
	stopChan chan struct{}
	started  bool
}

func NewSubscriber(wsURL string, token func() string, handler TopicHandler) *Subscriber {
	return &Subscriber{
		URL:      wsURL,
		Token:    token,
		Handler:  handler,
		stopChan: make(chan struct{}),
	}
}

// Start menjalankan loop koneksi di goroutine sendiri.
func (s *Subscriber) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.run()
	log.Println("Push subscriber started")
}

// Stop menutup koneksi dan menghentikan loop reconnect.
func (s *Subscriber) Stop() {
	close(s.stopChan)
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
}

func (s *Subscriber) run() {
	backoff := time.Second
	firstConnect := true

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		conn, err := s.connect()
		if err != nil {
			log.Printf("Websocket connect failed: %v (retrying in %v)", err, backoff)
			select {
			case <-time.After(backoff):
			case <-s.stopChan:
				return
			}
			// Backoff naik sampai maksimum 30 detik
			if backoff < 30*time.Second {
				backoff *= 2
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
			}
			continue
		}

		backoff = time.Second

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		if err := s.subscribeAll(conn); err != nil {
			log.Printf("Failed to subscribe topics: %v", err)
			conn.Close()
			continue
		}

		if !firstConnect && s.OnReconnect != nil {
			// Event yang hilang selama disconnect ditambal oleh poll berikutnya
			s.OnReconnect()
		}
		firstConnect = false

		s.readLoop(conn)

		select {
		case <-s.stopChan:
			return
		default:
			log.Println("Websocket connection lost, reconnecting")
		}
	}
}

func (s *Subscriber) connect() (*websocket.Conn, error) {
	header := http.Header{}
	if s.Token != nil {
		if token := s.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(s.URL, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Subscriber) subscribeAll(conn *websocket.Conn) error {
	for _, topic := range AllTopics {
		cmd := subscribeCmd{Action: "subscribe", Topic: topic}
		if err := conn.WriteJSON(cmd); err != nil {
			return err
		}
	}
	log.Printf("Subscribed to %d topics", len(AllTopics))
	return nil
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			// Pesan rusak hanya membuang pesan itu, loop tetap jalan
			log.Printf("Dropping malformed websocket frame: %v", err)
			continue
		}
		if f.Topic == "" || s.Handler == nil {
			continue
		}
		s.Handler(f.Topic, f.Payload)
	}
}
