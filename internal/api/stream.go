package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	streamWriteWait = 10 * time.Second
	// streamQueue is the per-client headroom beyond the replayed backlog.
	streamQueue = 32
)

// FactCheckEvent describes websocket payloads emitted as checks complete.
type FactCheckEvent struct {
	Type      string        `json:"type"`
	FactCheck *FactCheckDTO `json:"fact_check,omitempty"`
	Stats     *StatsDTO     `json:"stats,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// wsClient owns one connection. Only its writer goroutine touches the socket
// for writes; everyone else hands events over through send.
type wsClient struct {
	conn      *websocket.Conn
	send      chan FactCheckEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, queue int) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan FactCheckEvent, queue),
		done: make(chan struct{}),
	}
}

// FactCheckNotifier keeps track of live-feed clients and broadcasts events.
type FactCheckNotifier struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	recent  []FactCheckEvent
	backlog int
}

// NewFactCheckNotifier constructs a notifier that replays up to backlog
// recent events to newly connected clients.
func NewFactCheckNotifier(backlog int) *FactCheckNotifier {
	if backlog < 0 {
		backlog = 0
	}
	return &FactCheckNotifier{clients: make(map[*wsClient]struct{}), backlog: backlog}
}

// Register attaches a websocket connection. The backlog is queued before the
// client becomes visible to Broadcast, so replayed events always come first.
func (n *FactCheckNotifier) Register(conn *websocket.Conn) *wsClient {
	client := newWSClient(conn, n.backlog+streamQueue)

	n.mu.Lock()
	for _, event := range n.recent {
		client.send <- event
	}
	n.clients[client] = struct{}{}
	n.mu.Unlock()

	go client.writeLoop()
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *FactCheckNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	client.close()
}

// Broadcast queues the event for every registered client without blocking.
// Clients whose queue is full are disconnected.
func (n *FactCheckNotifier) Broadcast(event FactCheckEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	if event.Type == "fact_check" && n.backlog > 0 {
		n.recent = append(n.recent, event)
		if len(n.recent) > n.backlog {
			n.recent = n.recent[len(n.recent)-n.backlog:]
		}
	}
	for client := range n.clients {
		select {
		case client.send <- event:
		default:
			delete(n.clients, client)
			client.close()
			logrus.Warn("dropping slow fact-check websocket client")
		}
	}
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteJSON(event); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
