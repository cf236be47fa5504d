package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/aretw0/bpmngen/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractMarkup carries bytes that a careless round trip would alter
// (CRLF, trailing whitespace, non-ASCII, no final newline).
const contractMarkup = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\r\n<definitions name=\"Pedido – revisão\">  \n\t<process id=\"P\"/>\n</definitions>"

// DiagramStoreContractTest verifies that a DiagramStore implementation adheres to
// the interface contract. newStore must return an empty store on every call.
func DiagramStoreContractTest(t *testing.T, newStore func(t *testing.T) ports.DiagramStore) {
	ctx := context.Background()

	t.Run("Latest On Empty Store", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Latest(ctx)
		assert.ErrorIs(t, err, domain.ErrNoDiagram)
	})

	t.Run("Save and Latest", func(t *testing.T) {
		store := newStore(t)
		compiledAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
		err := store.Save(ctx, &domain.Diagram{
			Token:      7,
			Name:       "Order Processing",
			Markup:     contractMarkup,
			CompiledAt: compiledAt,
		})
		require.NoError(t, err, "Save should not return error")

		got, err := store.Latest(ctx)
		require.NoError(t, err, "Latest should not return error")
		assert.Equal(t, uint64(7), got.Token)
		assert.Equal(t, "Order Processing", got.Name)
		assert.Equal(t, []byte(contractMarkup), []byte(got.Markup), "markup must round-trip byte-for-byte")
		assert.True(t, compiledAt.Equal(got.CompiledAt))
	})

	t.Run("Save Replaces", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, &domain.Diagram{Token: 1, Markup: "<a/>"}))
		require.NoError(t, store.Save(ctx, &domain.Diagram{Token: 2, Markup: "<b/>"}))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), got.Token)
		assert.Equal(t, "<b/>", got.Markup)
	})

	t.Run("Returned Copy Is Detached", func(t *testing.T) {
		store := newStore(t)
		d := &domain.Diagram{Token: 3, Markup: "<c/>"}
		require.NoError(t, store.Save(ctx, d))
		d.Markup = "<mutated/>"

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "<c/>", got.Markup)
	})
}
