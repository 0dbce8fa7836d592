// Package client consumes a generation event stream and reassembles it
// into editor-ready artifacts. It backs Go callers of the server (CLI
// clients and tests) the same way the browser consumer does.
package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sitegen/internal/fileparse"
	"sitegen/internal/models"
	"sitegen/internal/stream"
)

const defaultPreviewInterval = 300 * time.Millisecond

// ErrStreamTruncated reports a connection that closed before a
// terminal event arrived.
var ErrStreamTruncated = errors.New("stream closed before completion")

// GenerationError carries the message of a terminal error event.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

// Result is the final artifact of a completed generation: either a
// file collection (fullstack) or a single document, never both.
type Result struct {
	Mode        models.Mode
	FullContent string
	Files       []fileparse.File
	Document    string
}

// Consumer reads data-framed stream events from a response body.
// OnPreview, when set, receives rate-limited best-effort partial
// documents while a single-document mode is streaming.
type Consumer struct {
	OnPreview       func(html string)
	PreviewInterval time.Duration
}

// Consume reads the stream to its terminal event. A done event yields
// a Result; an error event yields a GenerationError and no result, so
// callers keep their prior artifact untouched.
func (c *Consumer) Consume(body io.Reader, mode models.Mode) (*Result, error) {
	interval := c.PreviewInterval
	if interval <= 0 {
		interval = defaultPreviewInterval
	}

	var (
		buf        strings.Builder
		lastRender time.Time
	)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var evt stream.Event
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &evt); err != nil {
			// One corrupt frame must not abort the stream.
			continue
		}

		switch {
		case evt.Error != "":
			return nil, &GenerationError{Message: evt.Error}

		case evt.Done:
			return finalize(evt, mode), nil

		case evt.Content != "":
			buf.WriteString(evt.Content)
			if c.OnPreview == nil {
				continue
			}
			if mode != models.ModeFrontend && mode != models.ModeDesignClone {
				continue
			}
			if time.Since(lastRender) < interval {
				continue
			}
			if partial, ok := fileparse.PartialDocument(buf.String()); ok {
				c.OnPreview(partial)
				lastRender = time.Now()
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return nil, ErrStreamTruncated
}

func finalize(evt stream.Event, mode models.Mode) *Result {
	result := &Result{
		Mode:        mode,
		FullContent: evt.FullContent,
	}

	if mode == models.ModeFullstack {
		result.Files = fileparse.Parse(evt.FullContent)
		return result
	}

	if doc, ok := fileparse.ExtractDocument(evt.FullContent); ok {
		result.Document = doc
	}
	return result
}
