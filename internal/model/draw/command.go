package draw

// Client command types accepted on the drawing socket.
const (
	CommandPing   = "ping"
	CommandCancel = "cancel"
	CommandDraw   = "draw"
)

// Command is one inbound client message.
type Command struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"` // draw only
	ID     string `json:"id,omitempty"`     // draw only, generated when absent
	Model  string `json:"model,omitempty"`  // draw only, default model when absent
}
