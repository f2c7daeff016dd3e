package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/logger"
)

func startServer(t *testing.T, handler http.Handler, drain time.Duration) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(&config.Config{Port: "0"}, logger.Nop(), handler).WithDrainTimeout(drain)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(cancel)

	return "http://" + ln.Addr().String(), cancel, done
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	url, cancel, done := startServer(t, newTestRouter(nil), time.Second)

	resp, err := http.Get(url + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get(url + "/health")
	assert.Error(t, err, "listener closed")
}

func TestServer_CancelsLingeringRequestsAfterDrain(t *testing.T) {
	entered := make(chan struct{})
	released := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-r.Context().Done()
		released <- r.Context().Err()
	})

	url, cancel, done := startServer(t, handler, 50*time.Millisecond)

	go func() {
		resp, err := http.Get(url + "/slow")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	cancel()

	select {
	case err := <-released:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("handler context was never cancelled")
	}

	select {
	case err := <-done:
		assert.Error(t, err, "drain deadline exceeded")
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	srv := New(&config.Config{Port: port}, logger.Nop(), newTestRouter(nil))
	err = srv.Run(context.Background())
	assert.Error(t, err)
}
