package websocket

import (
	"log/slog"
	"sync"
)

// Hub keeps the open connections by id and delivers room events to them.
type Hub struct {
	logger *slog.Logger

	mutex   sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "websocket_hub"),
		clients: make(map[string]*client),
	}
}

func (that *Hub) register(c *client) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.clients[c.id] = c
}

func (that *Hub) unregister(c *client) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if current, ok := that.clients[c.id]; ok && current == c {
		delete(that.clients, c.id)
	}
	c.close()
}

// Send queues an event for one connection. A connection that cannot keep up is dropped.
func (that *Hub) Send(connectionID, event string, payload any) {
	log := that.logger.With("method", "Send", "connectionID", connectionID, "event", event)

	data, err := newMessage(event, payload)
	if err != nil {
		log.Error("failed to build message", "error", err)
		return
	}

	that.mutex.RLock()
	c, ok := that.clients[connectionID]
	that.mutex.RUnlock()

	if !ok {
		log.Debug("connection not found")
		return
	}

	if !c.enqueue(data) {
		log.Warn("send buffer is full, dropping connection")
		that.unregister(c)
	}
}

func (that *Hub) Count() int {
	that.mutex.RLock()
	defer that.mutex.RUnlock()

	return len(that.clients)
}
