package terminal_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/aretw0/bpmngen/pkg/adapters/terminal"
	"github.com/aretw0/bpmngen/pkg/sandbox"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderMarkup(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("../../bpmn/testdata/order.bpmn")
	require.NoError(t, err)
	return string(raw)
}

func newController(buf *bytes.Buffer) *sandbox.Controller {
	return sandbox.New(terminal.Factory(buf,
		terminal.WithWidth(80),
		terminal.WithStyle("notty"),
		terminal.WithColorProfile(termenv.Ascii),
	))
}

func TestRealm_RendersOutline(t *testing.T) {
	var buf bytes.Buffer
	c := newController(&buf)

	out, err := c.Render(context.Background(), orderMarkup(t))
	require.NoError(t, err)
	assert.Equal(t, sandbox.StatusRendered, out.Status)

	text := buf.String()
	assert.Contains(t, text, "Order Management")
	assert.Contains(t, text, "Order Reception")
	assert.Contains(t, text, "Task_1")
	assert.Contains(t, text, "Validate & Check")
	assert.Contains(t, text, "4 elements, 3 flows")
}

func TestRealm_ShowsImportError(t *testing.T) {
	var buf bytes.Buffer
	c := newController(&buf)

	out, err := c.Render(context.Background(), "<nope/>")
	require.Error(t, err)
	assert.Equal(t, sandbox.StatusErrorDisplayed, out.Status)
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen), "screen is cleared first")
	msg := afterClear(buf.String())
	assert.Contains(t, msg, "Diagram could not be displayed: unexpected root element <nope>")
	assert.NotContains(t, msg, "\x1b[", "ascii profile prints no color codes")
}

const clearScreen = "\x1b[2J\x1b[1;1H"

// afterClear returns what was written after the last screen clear.
func afterClear(s string) string {
	if i := strings.LastIndex(s, clearScreen); i >= 0 {
		return s[i+len(clearScreen):]
	}
	return s
}

func TestRealm_ErrorReplacesPreviousOutline(t *testing.T) {
	var buf bytes.Buffer
	c := newController(&buf)

	_, err := c.Render(context.Background(), orderMarkup(t))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Task_1")

	out, err := c.Render(context.Background(), "<nope/>")
	require.Error(t, err)
	assert.Equal(t, sandbox.StatusErrorDisplayed, out.Status)

	visible := afterClear(buf.String())
	assert.Contains(t, visible, "Diagram could not be displayed")
	assert.NotContains(t, visible, "Task_1", "old outline is off screen")
}

func TestRealm_Dispose(t *testing.T) {
	var buf bytes.Buffer
	r := terminal.New(&buf, terminal.WithWidth(80), terminal.WithStyle("notty"))
	require.NotEmpty(t, r.ID())

	require.NoError(t, r.Dispose())
	require.NoError(t, r.Dispose())

	_, err := r.Bootstrap(context.Background())
	assert.ErrorIs(t, err, terminal.ErrDisposed)
	assert.ErrorIs(t, r.ShowError(context.Background(), "x"), terminal.ErrDisposed)
}

func TestRealm_FreshIDPerRender(t *testing.T) {
	var buf bytes.Buffer
	c := newController(&buf)

	first, err := c.Render(context.Background(), orderMarkup(t))
	require.NoError(t, err)
	second, err := c.Render(context.Background(), orderMarkup(t))
	require.NoError(t, err)
	assert.NotEqual(t, first.RealmID, second.RealmID)
}
