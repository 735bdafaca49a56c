package server

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct{ n atomic.Int32 }

func (c *countingSweeper) Sweep() int {
	c.n.Add(1)
	return 0
}

func TestStartServesHandler(t *testing.T) {
	srv, err := Start(Options{
		Addr: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
	})
	require.NoError(t, err)
	defer func() { _ = srv.Stop(context.Background()) }()

	resp, err := http.Get(srv.URL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestSweeperRuns(t *testing.T) {
	sw := &countingSweeper{}
	srv, err := Start(Options{
		Addr:          "127.0.0.1:0",
		Handler:       http.NotFoundHandler(),
		Sweeper:       sw,
		SweepInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sw.n.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))
}

func TestWaitStopsOnContext(t *testing.T) {
	srv, err := Start(Options{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Wait(ctx, time.Second))

	_, err = http.Get(srv.URL())
	assert.Error(t, err)
}

func TestStartBadAddr(t *testing.T) {
	_, err := Start(Options{Addr: "256.0.0.1:-1", Handler: http.NotFoundHandler()})
	assert.Error(t, err)
}
