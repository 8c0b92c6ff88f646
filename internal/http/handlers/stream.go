package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"myshop/internal/result"
	"myshop/internal/state"

	"github.com/gofiber/fiber/v2"
)

const (
	streamTimeout = 2 * time.Minute
	heartbeat     = 15 * time.Second
)

type event struct {
	State   string `json:"state"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeEvent(w *bufio.Writer, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	return w.Flush()
}

func sseHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}

// sse writes every result of s as one event: pending first, then the
// terminal one. A client that goes away cancels the stream.
func sse[T any](c *fiber.Ctx, s result.Stream[T]) error {
	sseHeaders(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()
		for r := range s(ctx) {
			ev := event{State: r.State.String(), Message: r.Message}
			if r.State == result.StateSucceeded {
				ev.Data = r.Data
			}
			if err := writeEvent(w, ev.State, ev); err != nil {
				return
			}
		}
	})
	return nil
}

// watch runs action and streams every snapshot cell goes through meanwhile.
// The final snapshot is sent as a "done" event. With follow the stream stays
// open for later changes until the client leaves or streamTimeout passes.
func watch[T any](c *fiber.Ctx, cell *state.Cell[T], action func(ctx context.Context), follow bool) error {
	sseHeaders(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()
		updates := cell.Watch(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			action(ctx)
		}()
		tick := time.NewTicker(heartbeat)
		defer tick.Stop()
		for {
			select {
			case v, ok := <-updates:
				if !ok {
					return
				}
				if writeEvent(w, "snapshot", v) != nil {
					return
				}
			case <-done:
				if follow {
					done = nil
					continue
				}
				_ = writeEvent(w, "done", cell.Get())
				return
			case <-tick.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil || w.Flush() != nil {
					return
				}
			}
		}
	})
	return nil
}
