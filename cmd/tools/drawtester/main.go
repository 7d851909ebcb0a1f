package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	drawmodel "github.com/marcus/good-drawer/internal/model/draw"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	addr := flag.String("addr", "localhost:8080", "server address (host:port)")
	prompt := flag.String("prompt", "", "what to draw")
	model := flag.String("model", "", "model override, empty uses the server default")
	id := flag.String("id", "", "request id, auto-generated when empty")
	cancelAfter := flag.Duration("cancel-after", 0, "send cancel after this duration (0 disables)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")

	flag.Parse()

	if strings.TrimSpace(*prompt) == "" {
		flag.Usage()
		log.Fatal(`a prompt is required: -prompt "a cat playing violin"`)
	}

	reqID := *id
	if reqID == "" {
		reqID = uuid.NewString()
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/draw"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dialing %s failed: %v", u.String(), err)
	}
	defer conn.Close()

	cmd := drawmodel.Command{Type: drawmodel.CommandDraw, Prompt: *prompt, ID: reqID, Model: *model}
	if err := conn.WriteJSON(cmd); err != nil {
		log.Fatalf("sending draw command failed: %v", err)
	}
	log.Printf("draw requested: id=%s prompt=%q", reqID, *prompt)

	if *cancelAfter > 0 {
		time.AfterFunc(*cancelAfter, func() {
			log.Printf("sending cancel after %s", *cancelAfter)
			if err := conn.WriteJSON(drawmodel.Command{Type: drawmodel.CommandCancel}); err != nil {
				log.Printf("sending cancel failed: %v", err)
			}
		})
	}

	deadline := time.Now().Add(*timeout)
	started := time.Now()
	var svg strings.Builder

	for {
		conn.SetReadDeadline(deadline)
		var evt drawmodel.Event
		if err := conn.ReadJSON(&evt); err != nil {
			log.Fatalf("reading event failed: %v", err)
		}
		elapsed := time.Since(started).Round(time.Millisecond)

		switch evt.Type {
		case drawmodel.EventPong:
		case drawmodel.EventStart:
			log.Printf("[%s] started id=%s", elapsed, evt.ID)
		case drawmodel.EventChunk:
			svg.WriteString(evt.Data)
			log.Printf("[%s] chunk %d bytes (total %d)", elapsed, len(evt.Data), svg.Len())
		case drawmodel.EventDone:
			log.Printf("[%s] done, %d bytes of SVG", elapsed, svg.Len())
			fmt.Println(svg.String())
			return
		case drawmodel.EventCancelled:
			log.Printf("[%s] cancelled", elapsed)
			return
		case drawmodel.EventError:
			log.Fatalf("[%s] error: %s", elapsed, evt.Message)
		default:
			log.Printf("[%s] unknown event %q", elapsed, evt.Type)
		}
	}
}
