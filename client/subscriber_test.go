package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakePushServer menerima subscribe command dan mengirim frame yang disetel.
type fakePushServer struct {
	server *httptest.Server

	mu         sync.Mutex
	topics     []string
	connects   int64
	frameQueue []frame
}

func newFakePushServer(t *testing.T, frames ...frame) *fakePushServer {
	fp := &fakePushServer{frameQueue: frames}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt64(&fp.connects, 1)

		// Baca semua subscribe command dulu
		for i := 0; i < len(AllTopics); i++ {
			var cmd subscribeCmd
			if err := conn.ReadJSON(&cmd); err != nil {
				conn.Close()
				return
			}
			fp.mu.Lock()
			fp.topics = append(fp.topics, cmd.Topic)
			fp.mu.Unlock()
		}

		fp.mu.Lock()
		frames := fp.frameQueue
		fp.frameQueue = nil
		fp.mu.Unlock()

		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				break
			}
		}

		// Tahan koneksi sampai client menutup
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePushServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fp.server.URL, "http")
}

func TestSubscriberSubscribesAllTopicsAndDispatches(t *testing.T) {
	payload, _ := json.Marshal(map[string]interface{}{"tableId": 3, "callTime": "t"})
	fp := newFakePushServer(t, frame{Topic: TopicStaffCalls, Payload: payload})

	type received struct {
		topic   string
		payload []byte
	}
	got := make(chan received, 1)

	sub := NewSubscriber(fp.wsURL(), func() string { return "tok" }, func(topic string, payload []byte) {
		got <- received{topic, payload}
	})
	sub.Start()
	defer sub.Stop()

	select {
	case msg := <-got:
		assert.Equal(t, TopicStaffCalls, msg.topic)
		assert.JSONEq(t, string(payload), string(msg.payload))
	case <-time.After(2 * time.Second):
		t.Fatal("no message dispatched")
	}

	fp.mu.Lock()
	topics := append([]string(nil), fp.topics...)
	fp.mu.Unlock()
	assert.ElementsMatch(t, AllTopics, topics, "all topics must be subscribed")
}

func TestSubscriberReconnectsAndResubscribes(t *testing.T) {
	fp := newFakePushServer(t)

	var reconnects int64
	sub := NewSubscriber(fp.wsURL(), nil, func(string, []byte) {})
	sub.OnReconnect = func() { atomic.AddInt64(&reconnects, 1) }
	sub.Start()
	defer sub.Stop()

	// Tunggu koneksi pertama
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fp.connects) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// Putuskan dari sisi server
	sub.mu.Lock()
	conn := sub.conn
	sub.mu.Unlock()
	require.NotNil(t, conn)
	conn.Close()

	// Client harus reconnect dan subscribe ulang semua topik
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fp.connects) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&reconnects) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		fp.mu.Lock()
		defer fp.mu.Unlock()
		return len(fp.topics) >= 2*len(AllTopics)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscriberDropsMalformedFrame(t *testing.T) {
	// Server mengirim frame rusak lalu frame sehat; yang sehat tetap sampai
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for i := 0; i < len(AllTopics); i++ {
			var cmd subscribeCmd
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{broken`))
		conn.WriteJSON(frame{Topic: TopicStaffTables, Payload: json.RawMessage(`{"id":1}`)})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	got := make(chan string, 1)
	sub := NewSubscriber("ws"+strings.TrimPrefix(server.URL, "http"), nil, func(topic string, _ []byte) {
		got <- topic
	})
	sub.Start()
	defer sub.Stop()

	select {
	case topic := <-got:
		assert.Equal(t, TopicStaffTables, topic)
	case <-time.After(2 * time.Second):
		t.Fatal("healthy frame not dispatched")
	}
}
