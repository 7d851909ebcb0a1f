package draw

import (
	"encoding/json"
	"testing"
)

func TestTerminalEvents(t *testing.T) {
	if !Done("a").IsTerminal() || !Cancelled("a").IsTerminal() || !Error("a", "x").IsTerminal() {
		t.Fatalf("expected done/cancelled/error to be terminal")
	}
	if Start("a").IsTerminal() || Chunk("a", "d").IsTerminal() || Pong().IsTerminal() {
		t.Fatalf("expected start/chunk/pong to be non-terminal")
	}
}

func TestPongOmitsRequestFields(t *testing.T) {
	payload, err := json.Marshal(Pong())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `{"type":"pong"}` {
		t.Fatalf("unexpected pong payload: %s", payload)
	}
}
