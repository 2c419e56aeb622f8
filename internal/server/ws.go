package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/metrics"
)

const (
	feedBuffer     = 16
	feedWriteWait  = 2 * time.Second
	feedPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FeedHandler pushes every coaching Update to websocket clients.
type FeedHandler struct {
	coach   Coach
	metrics *metrics.Manager

	mu      sync.Mutex
	clients int
}

// NewFeedHandler creates a FeedHandler for coach. m may be nil.
func NewFeedHandler(coach Coach, m *metrics.Manager) *FeedHandler {
	return &FeedHandler{coach: coach, metrics: m}
}

// Clients returns the number of connected clients.
func (h *FeedHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients
}

func (h *FeedHandler) track(delta int) {
	h.mu.Lock()
	h.clients += delta
	n := h.clients
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.GaugeFeedClients.Set(float64(n))
	}
}

// ServeHTTP upgrades the connection and streams updates until the client
// goes away. Slow clients miss updates instead of stalling the pipeline.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade error")
		return
	}
	defer conn.Close()

	h.track(1)
	defer h.track(-1)

	updates := make(chan app.Update, feedBuffer)
	unsubscribe := h.coach.Subscribe(func(u app.Update) {
		select {
		case updates <- u:
		default:
		}
	})
	defer unsubscribe()

	// The read loop notices the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// New clients start from the current state.
	if err := h.write(conn, h.coach.Snapshot().Update); err != nil {
		return
	}

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case u := <-updates:
			if err := h.write(conn, u); err != nil {
				log.WithError(err).Debug("feed client write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *FeedHandler) write(conn *websocket.Conn, u app.Update) error {
	conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteJSON(u); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.CounterWSMessages.Inc()
	}
	return nil
}
