package notify

import (
	"encoding/json"
	"log/slog"

	"github.com/cattus-org/cattus-api/websocket"
)

// Notifier delivers realtime messages to every dashboard watching a scope.
type Notifier interface {
	// NotifyScope sends the raw sentinel or a JSON-serializable event to a
	// scope such as "company:3" or "camera:12".
	NotifyScope(scope string, event interface{})
}

// WSNotifier implements Notifier using a WebSocket Hub.
type WSNotifier struct {
	Hub *websocket.Hub
}

// NotifyScope serializes the event and delivers it to all clients subscribed
// to the scope. Plain strings are sent verbatim, which is how the
// activity-changed sentinel travels.
func (n *WSNotifier) NotifyScope(scope string, event interface{}) {
	if n == nil || n.Hub == nil {
		return
	}
	if s, ok := event.(string); ok {
		n.Hub.Broadcast(scope, []byte(s))
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal notification", "scope", scope, "err", err)
		return
	}
	n.Hub.Broadcast(scope, payload)
}
