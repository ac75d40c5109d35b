// Package transport owns the duplex-channel Listener: binding a TCP port,
// upgrading incoming connections to WebSocket, and spawning one Session
// per accepted connection.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oldirty/AirCodum/engine"
	"github.com/oldirty/AirCodum/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UIPanel is the optional host-side UI panel disposed alongside the
// listener. Named-interface-only: the host webview UI itself is out of
// scope for this core.
type UIPanel interface {
	Dispose() error
}

// Listener accepts new duplex connections and spawns a Session per
// upgrade. Start and Stop are both idempotent; Stop is best-effort and a
// failure in any one cleanup step never skips the rest.
type Listener struct {
	addr    string
	engine  *engine.CaptureEngine
	real    engine.ScreenSize
	logger  *zap.Logger
	newOpts func() session.Options

	mu      sync.Mutex
	running bool
	server  *http.Server
	panel   UIPanel
}

// New constructs a Listener bound to addr once Start is called. newOpts is
// invoked once per accepted connection to build that Session's port set.
func New(addr string, eng *engine.CaptureEngine, real engine.ScreenSize, logger *zap.Logger, newOpts func() session.Options) *Listener {
	return &Listener{addr: addr, engine: eng, real: real, logger: logger, newOpts: newOpts}
}

// SetPanel registers a UI panel to be disposed when Stop runs.
func (l *Listener) SetPanel(panel UIPanel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.panel = panel
}

// Start binds the listener and begins accepting connections in the
// background. If already running, it returns a notification string
// instead of opening a second listener.
func (l *Listener) Start() (notification string, err error) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return "server is already running", nil
	}
	l.mu.Unlock()

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return "", fmt.Errorf("listener bind failed: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleUpgrade)
	srv := &http.Server{Addr: l.addr, Handler: mux}

	l.mu.Lock()
	l.server = srv
	l.running = true
	l.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.logger.Error("listener serve error", zap.Error(err))
		}
	}()

	notification = fmt.Sprintf("server started at http://%s", l.addr)
	l.logger.Info(notification)
	return notification, nil
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	sess := session.New(conn, l.real, l.logger, l.newOpts())
	sess.Start(l.engine)
}

// Stop closes the acceptor, disposes any registered UI panel, and clears
// running state. Every step runs even if an earlier one fails; Stop never
// returns an error. Connections already upgraded to sessions are not closed
// by Stop: http.Server.Shutdown leaves hijacked connections open, and each
// Session ends when its own connection closes.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	srv := l.server
	panel := l.panel
	l.running = false
	l.server = nil
	l.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.logger.Error("error shutting down listener", zap.Error(err))
		}
	}

	if panel != nil {
		l.disposePanelSafely(panel)
	}

	l.logger.Info("WebSocket server closed.")
}

func (l *Listener) disposePanelSafely(panel UIPanel) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panel dispose panicked", zap.Any("recover", r))
		}
	}()
	if err := panel.Dispose(); err != nil {
		l.logger.Error("error disposing UI panel", zap.Error(err))
	}
}

// IsRunning reports whether the listener is currently accepting
// connections.
func (l *Listener) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
