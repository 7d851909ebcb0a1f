package draw

// Server event types emitted on the drawing socket.
const (
	EventPong      = "pong"
	EventStart     = "start"
	EventChunk     = "chunk"
	EventDone      = "done"
	EventCancelled = "cancelled"
	EventError     = "error"
)

// Event is one outbound server message. For a given request id the server
// emits exactly one start, zero or more chunk, and exactly one of
// done/cancelled/error.
type Event struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Data    string `json:"data,omitempty"`    // chunk only
	Message string `json:"message,omitempty"` // error only
}

// IsTerminal reports whether the event ends its request's message sequence.
func (e Event) IsTerminal() bool {
	switch e.Type {
	case EventDone, EventCancelled, EventError:
		return true
	}
	return false
}

func Pong() Event { return Event{Type: EventPong} }

func Start(id string) Event { return Event{Type: EventStart, ID: id} }

func Chunk(id, data string) Event { return Event{Type: EventChunk, ID: id, Data: data} }

func Done(id string) Event { return Event{Type: EventDone, ID: id} }

func Cancelled(id string) Event { return Event{Type: EventCancelled, ID: id} }

func Error(id, message string) Event { return Event{Type: EventError, ID: id, Message: message} }
