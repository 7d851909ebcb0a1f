package draw

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cloudwego/eino/schema"

	drawmodel "github.com/marcus/good-drawer/internal/model/draw"
	"github.com/marcus/good-drawer/internal/service/engine"
)

// generation is the owned handle for one running draw request. cancel is the
// generation's cancellation scope and done closes when its task has fully
// returned; the session replaces a handle only after signalling cancel and
// waiting on done.
type generation struct {
	id     string
	prompt string
	model  string
	cancel context.CancelFunc
	done   chan struct{}
}

// fragment is one pump delivery: a piece of generated text, or the stream's
// failure.
type fragment struct {
	data string
	err  error
}

// User-facing failure messages. Everything beyond these stays in server logs.
const (
	msgStartTimeout = "Drawing took too long to start. Try again."
	msgIdleTimeout  = "Drawing stalled. Try a simpler prompt."
	msgHardLimit    = "Drawing took too long."
	msgUnavailable  = "Cannot connect to drawing engine. Is Ollama running?"
	msgGeneric      = "An error occurred."
)

// run drives one generation to exactly one terminal outcome:
//
//	start -> chunk* -> done | cancelled | error
//
// Every fragment wait races the active deadline, the hard limit, and
// cancellation, so a stalled backend can always be interrupted.
func (s *session) run(ctx context.Context, g *generation) {
	started := time.Now()
	var firstFragment time.Duration
	cancelled := false
	errReason := ""

	defer func() {
		evt := s.log.Info().
			Str("req", shortID(g.id)).
			Int64("total_ms", time.Since(started).Milliseconds()).
			Bool("cancelled", cancelled)
		if firstFragment > 0 {
			evt = evt.Int64("first_chunk_ms", firstFragment.Milliseconds())
		}
		if errReason != "" {
			evt = evt.Str("error", errReason)
		}
		evt.Msg("draw finished")
	}()

	if err := s.send(drawmodel.Start(g.id)); err != nil {
		errReason = "write_failed"
		return
	}

	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()

	stream, err := s.engine.Stream(streamCtx, g.prompt, g.model)
	if err != nil {
		if ctx.Err() != nil {
			cancelled = true
			s.send(drawmodel.Cancelled(g.id))
			return
		}
		errReason = s.failGeneration(g.id, err)
		return
	}
	defer stream.Close()

	frags := make(chan fragment)
	go pump(streamCtx, stream, frags)

	hardTimer := time.NewTimer(s.cfg.HardLimit)
	defer hardTimer.Stop()

	gotFirst := false
	for {
		// Level-triggered checks before each wait: a fragment firehose must
		// not starve cancellation or the hard limit.
		if ctx.Err() != nil {
			cancelled = true
			s.send(drawmodel.Cancelled(g.id))
			return
		}
		if time.Since(started) > s.cfg.HardLimit {
			errReason = "timeout_hard"
			s.send(drawmodel.Error(g.id, msgHardLimit))
			return
		}

		waitFor := s.cfg.StartDeadline
		if gotFirst {
			waitFor = s.cfg.IdleGap
		}
		waitTimer := time.NewTimer(waitFor)

		select {
		case frag, ok := <-frags:
			waitTimer.Stop()
			if !ok {
				s.send(drawmodel.Done(g.id))
				return
			}
			if frag.err != nil {
				if ctx.Err() != nil {
					// The stream failed because we cancelled it.
					cancelled = true
					s.send(drawmodel.Cancelled(g.id))
					return
				}
				errReason = s.failGeneration(g.id, frag.err)
				return
			}
			if !gotFirst {
				gotFirst = true
				firstFragment = time.Since(started)
			}
			if err := s.send(drawmodel.Chunk(g.id, frag.data)); err != nil {
				errReason = "write_failed"
				return
			}

		case <-waitTimer.C:
			if !gotFirst {
				errReason = "timeout_start"
				s.send(drawmodel.Error(g.id, msgStartTimeout))
			} else {
				errReason = "timeout_idle"
				s.send(drawmodel.Error(g.id, msgIdleTimeout))
			}
			return

		case <-hardTimer.C:
			waitTimer.Stop()
			errReason = "timeout_hard"
			s.send(drawmodel.Error(g.id, msgHardLimit))
			return

		case <-ctx.Done():
			waitTimer.Stop()
			cancelled = true
			s.send(drawmodel.Cancelled(g.id))
			return
		}
	}
}

// failGeneration classifies a backend failure, notifies the client with a
// safe message, and returns the classification for the completion record.
func (s *session) failGeneration(id string, err error) string {
	if engine.IsUnavailable(err) {
		s.log.Warn().Err(err).Str("req", shortID(id)).Msg("drawing engine unreachable")
		s.send(drawmodel.Error(id, msgUnavailable))
		return "engine_unavailable"
	}
	s.log.Error().Err(err).Str("req", shortID(id)).Msg("draw generation failed")
	s.send(drawmodel.Error(id, msgGeneric))
	return "stream_failed"
}

// pump forwards non-empty fragments from the stream into out, then closes
// out. Empty chunks never touch the idle clock. Delivery aborts when ctx is
// cancelled, so an abandoned pump always exits.
func pump(ctx context.Context, stream *schema.StreamReader[*schema.Message], out chan<- fragment) {
	defer close(out)
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case out <- fragment{err: err}:
			case <-ctx.Done():
			}
			return
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		select {
		case out <- fragment{data: msg.Content}:
		case <-ctx.Done():
			return
		}
	}
}
