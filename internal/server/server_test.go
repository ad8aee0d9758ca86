package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coursely/payrelay/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type recordingLifecycle struct {
	hooks []fx.Hook
}

func (l *recordingLifecycle) Append(h fx.Hook) {
	l.hooks = append(l.hooks, h)
}

type stubShutdowner struct {
	called chan struct{}
}

func (s *stubShutdowner) Shutdown(...fx.ShutdownOption) error {
	close(s.called)
	return nil
}

func TestBindFailureRequestsShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Occupy the port so ListenAndServe fails immediately.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	lc := &recordingLifecycle{}
	sd := &stubShutdowner{called: make(chan struct{})}
	cfg := config.Config{HTTPAddr: ln.Addr().String()}

	run(lc, sd, gin.New(), cfg, zap.NewNop())
	require.Len(t, lc.hooks, 1)
	require.NoError(t, lc.hooks[0].OnStart(context.Background()))

	// A bind failure must unwind through fx, not exit the process, so OnStop
	// hooks still drain the pool and close clients.
	select {
	case <-sd.called:
	case <-time.After(2 * time.Second):
		t.Fatal("bind failure did not request shutdown")
	}
}
