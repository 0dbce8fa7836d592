package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sitegen/internal/models"
	"sitegen/internal/transport"
)

// Limits bounds a single relayed stream. Zero values disable the
// corresponding check. MaxDuration is enforced through the context
// handed to the source's Next; a source blocked in a network read is
// only interrupted when it was opened under a context carrying the
// same deadline, so callers must apply the deadline before opening
// the source.
type Limits struct {
	MaxBytes    int64
	MaxDuration time.Duration
}

// Relay pumps deltas from the token source onto the sink as content
// events, then writes exactly one terminal event and closes the sink.
// Empty deltas are suppressed; delivery order matches generation
// order. The returned error reports why the stream ended abnormally
// and is for logging only: the client-visible outcome has already been
// emitted as a terminal event by the time Relay returns.
func Relay(ctx context.Context, src transport.TokenStream, sink Sink, mode models.Mode, limits Limits) error {
	defer sink.Close()

	if limits.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MaxDuration)
		defer cancel()
	}

	var full strings.Builder
	for {
		delta, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				emitErr := sink.Emit(Event{Done: true, FullContent: full.String(), Mode: mode})
				return emitErr
			}
			terminal := Event{Error: clientMessage(err, limits)}
			_ = sink.Emit(terminal)
			return err
		}

		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if limits.MaxBytes > 0 && int64(full.Len()) > limits.MaxBytes {
			err := fmt.Errorf("stream exceeded %d byte limit", limits.MaxBytes)
			_ = sink.Emit(Event{Error: err.Error()})
			return err
		}

		if err := sink.Emit(Event{Content: delta, Mode: mode}); err != nil {
			// The client went away; stop reading upstream.
			return fmt.Errorf("write stream event: %w", err)
		}
	}
}

func clientMessage(err error, limits Limits) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("generation exceeded the %s time limit", limits.MaxDuration)
	case errors.Is(err, context.Canceled):
		return "generation was cancelled"
	default:
		return err.Error()
	}
}
