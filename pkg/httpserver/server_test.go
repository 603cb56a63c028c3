package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sigtoken/pkg/httpserver"
)

func startServer(t *testing.T, ctx context.Context, handler http.Handler, opts ...httpserver.Option) (*httpserver.Server, string, <-chan error) {
	t.Helper()

	addrCh := make(chan string, 1)
	opts = append([]httpserver.Option{
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100 * time.Millisecond),
		httpserver.WithoutSignals(),
		httpserver.WithStartHook(func(addr net.Addr) { addrCh <- addr.String() }),
	}, opts...)

	srv := httpserver.New(opts...)
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()

	select {
	case addr := <-addrCh:
		return srv, addr, done
	case err := <-done:
		require.FailNow(t, "server did not start", "run returned: %v", err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "server did not start in time")
	}
	return nil, "", nil
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err, "run")
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, addr, done := startServer(t, ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	waitDone(t, done)
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()

	srv, _, done := startServer(t, context.Background(), http.NewServeMux())
	require.NoError(t, srv.Shutdown(context.Background()), "first shutdown")
	require.NoError(t, srv.Shutdown(context.Background()), "second shutdown")
	waitDone(t, done)
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()

	srv := httpserver.New()
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestStartError(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr(":invalid"), httpserver.WithoutSignals())
	err := srv.Run(context.Background(), http.NewServeMux())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, _, done := startServer(t, ctx, http.NewServeMux())

	err := srv.Run(context.Background(), http.NewServeMux())
	require.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

	cancel()
	waitDone(t, done)
}

func TestStopHook(t *testing.T) {
	t.Parallel()

	var stopped atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	_, _, done := startServer(t, ctx, http.NewServeMux(), httpserver.WithStopHook(func() { stopped.Store(true) }))

	cancel()
	waitDone(t, done)
	assert.True(t, stopped.Load(), "stop hook not executed")
}

func TestWithServer(t *testing.T) {
	t.Parallel()

	hs := &http.Server{ReadTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	_, _, done := startServer(t, ctx, http.NewServeMux(),
		httpserver.WithServer(hs),
		httpserver.WithReadTimeout(5*time.Second),
		httpserver.WithWriteTimeout(2*time.Second),
		httpserver.WithIdleTimeout(3*time.Second),
		httpserver.WithReadHeaderTimeout(4*time.Second),
	)

	assert.Equal(t, time.Second, hs.ReadTimeout, "preset field wins")
	assert.Equal(t, 2*time.Second, hs.WriteTimeout)
	assert.Equal(t, 3*time.Second, hs.IdleTimeout)
	assert.Equal(t, 4*time.Second, hs.ReadHeaderTimeout)
	assert.Equal(t, "127.0.0.1:0", hs.Addr)
	assert.NotNil(t, hs.Handler)

	cancel()
	waitDone(t, done)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	hs := &http.Server{}
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  7 * time.Second,
		WriteTimeout: 8 * time.Second,
	}, httpserver.WithServer(hs), httpserver.WithoutSignals(), httpserver.WithStartHook(func(a net.Addr) { addrCh <- a }))

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	<-addrCh

	assert.Equal(t, 7*time.Second, hs.ReadTimeout)
	assert.Equal(t, 8*time.Second, hs.WriteTimeout)

	cancel()
	waitDone(t, done)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"read header", func() { httpserver.WithReadHeaderTimeout(0) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"server", func() { httpserver.WithServer(nil) }},
		{"start hook", func() { httpserver.WithStartHook(nil) }},
		{"stop hook", func() { httpserver.WithStopHook(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}

	t.Run("nil logger allowed", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() { httpserver.New(httpserver.WithLogger(nil)) })
	})
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checks   []httpserver.Check
		wantCode int
		wantBody string
	}{
		{
			name:     "liveness",
			wantCode: http.StatusOK,
			wantBody: "ALIVE",
		},
		{
			name: "ready",
			checks: []httpserver.Check{
				{Name: "redis", Fn: func(context.Context) error { return nil }},
				{Name: "postgres", Fn: func(context.Context) error { return nil }},
			},
			wantCode: http.StatusOK,
			wantBody: "READY",
		},
		{
			name: "not ready",
			checks: []httpserver.Check{
				{Name: "redis", Fn: func(context.Context) error { return nil }},
				{Name: "postgres", Fn: func(context.Context) error { return errors.New("down") }},
			},
			wantCode: http.StatusServiceUnavailable,
			wantBody: "NOT_READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			httpserver.HealthCheckHandler(nil, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
