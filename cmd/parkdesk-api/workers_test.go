package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"parkdesk/internal/snapshot"
)

func TestWorkers_FlushCommitsMadeDuringDrain(t *testing.T) {
	store := snapshot.NewStore(snapshot.NewMemoryKV(), "")
	writer := snapshot.NewWriter(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	signalCtx, stop := context.WithCancel(context.Background())
	bg := newWorkers()
	bg.Go(writer.Run)

	// SIGTERM arrives; the HTTP server is still finishing a request.
	stop()
	<-signalCtx.Done()
	writer.Enqueue(snapshot.State{Seeded: true})

	bg.Stop()

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, st.Seeded, "commit made after the signal must be persisted")
	require.EqualValues(t, 1, writer.Saved())
}
