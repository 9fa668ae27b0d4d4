package ws

import (
	"encoding/json"
	"strings"
	"time"
)

// JobsUpdatedEvent is pushed to every websocket client when a fetch persists
// postings that were not in the store before.
type JobsUpdatedEvent struct {
	Type      string `json:"type"`
	Keyword   string `json:"keyword"`
	Inserted  int    `json:"inserted"`
	Timestamp string `json:"timestamp"`
}

// Notifier adapts the hub to the update callback the job-search pipeline
// expects. A nil hub makes every notification a no-op.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) NotifyJobsUpdated(query string, inserted int) {
	if n == nil || n.hub == nil || inserted <= 0 {
		return
	}

	keyword := strings.ToLower(strings.TrimSpace(query))
	evt := JobsUpdatedEvent{
		Type:      "jobs_updated",
		Keyword:   keyword,
		Inserted:  inserted,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.Broadcast(b)
}
