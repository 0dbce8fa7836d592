package client

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegen/internal/models"
	"sitegen/internal/stream"
)

func sseBody(t *testing.T, events ...stream.Event) string {
	t.Helper()
	var b strings.Builder
	for _, evt := range events {
		data, err := json.Marshal(evt)
		require.NoError(t, err)
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestConsume_FrontendDocument(t *testing.T) {
	doc := "<!DOCTYPE html><html><body>hi</body></html>"
	body := sseBody(t,
		stream.Event{Content: "<!DOCTYPE html><html>", Mode: models.ModeFrontend},
		stream.Event{Content: "<body>hi</body></html>", Mode: models.ModeFrontend},
		stream.Event{Done: true, FullContent: doc, Mode: models.ModeFrontend},
	)

	c := &Consumer{}
	result, err := c.Consume(strings.NewReader(body), models.ModeFrontend)

	require.NoError(t, err)
	assert.Equal(t, doc, result.Document)
	assert.Equal(t, doc, result.FullContent)
	assert.Empty(t, result.Files)
}

func TestConsume_FullstackFiles(t *testing.T) {
	full := "```html:index.html\n<p>hi</p>\n```\n```javascript:server.js\nconst a = 1;\n```"
	body := sseBody(t,
		stream.Event{Content: full, Mode: models.ModeFullstack},
		stream.Event{Done: true, FullContent: full, Mode: models.ModeFullstack},
	)

	c := &Consumer{}
	result, err := c.Consume(strings.NewReader(body), models.ModeFullstack)

	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "index.html", result.Files[0].Filename)
	assert.Equal(t, "server.js", result.Files[1].Filename)
	assert.Empty(t, result.Document)
}

func TestConsume_ErrorEventLeavesNoResult(t *testing.T) {
	body := sseBody(t,
		stream.Event{Content: "partial", Mode: models.ModeFrontend},
		stream.Event{Error: "rate limit reached"},
	)

	c := &Consumer{}
	result, err := c.Consume(strings.NewReader(body), models.ModeFrontend)

	assert.Nil(t, result)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "rate limit reached", genErr.Message)
}

func TestConsume_TruncatedStream(t *testing.T) {
	body := sseBody(t, stream.Event{Content: "never finished", Mode: models.ModeFrontend})

	c := &Consumer{}
	result, err := c.Consume(strings.NewReader(body), models.ModeFrontend)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStreamTruncated)
}

func TestConsume_SkipsCorruptFrames(t *testing.T) {
	doc := "<!DOCTYPE html><html></html>"
	body := "data: {broken\n\n" + sseBody(t, stream.Event{Done: true, FullContent: doc, Mode: models.ModeFrontend})

	c := &Consumer{}
	result, err := c.Consume(strings.NewReader(body), models.ModeFrontend)

	require.NoError(t, err)
	assert.Equal(t, doc, result.Document)
}

func TestConsume_PreviewGetsPartialDocuments(t *testing.T) {
	body := sseBody(t,
		stream.Event{Content: "<!DOCTYPE html><html><body>", Mode: models.ModeFrontend},
		stream.Event{Content: "<p>more</p>", Mode: models.ModeFrontend},
		stream.Event{Done: true, FullContent: "<!DOCTYPE html><html><body><p>more</p></html>", Mode: models.ModeFrontend},
	)

	var previews []string
	c := &Consumer{
		OnPreview:       func(html string) { previews = append(previews, html) },
		PreviewInterval: time.Nanosecond,
	}

	_, err := c.Consume(strings.NewReader(body), models.ModeFrontend)
	require.NoError(t, err)

	require.NotEmpty(t, previews)
	for _, p := range previews {
		assert.Contains(t, p, "</html>", "every preview must be renderable")
	}
}

func TestConsume_NoPreviewForFullstack(t *testing.T) {
	body := sseBody(t,
		stream.Event{Content: "<!DOCTYPE html><html>", Mode: models.ModeFullstack},
		stream.Event{Done: true, FullContent: "x", Mode: models.ModeFullstack},
	)

	called := false
	c := &Consumer{
		OnPreview:       func(string) { called = true },
		PreviewInterval: time.Nanosecond,
	}

	_, err := c.Consume(strings.NewReader(body), models.ModeFullstack)
	require.NoError(t, err)
	assert.False(t, called)
}
