package session

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oldirty/AirCodum/engine"
	"github.com/oldirty/AirCodum/input"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// Options bundles the optional ports a Session dispatches through. Every
// field may be left nil; Session silently skips the dispatch rather than
// failing when a port it needs isn't configured.
type Options struct {
	Injector input.Injector
	Command  CommandPort
	Upload   FileUploadPort
	Chat     AiChatPort
	EditorUI EditorUiPort
	Secrets  SecretStore
}

// Session is one viewer's duplex adapter: it subscribes to the capture
// engine, forwards emitted frames as outbound envelopes, and dispatches
// inbound envelopes to the matching port. One Session exists per accepted
// connection.
type Session struct {
	id     uuid.UUID
	conn   *websocket.Conn
	logger *zap.Logger
	real   engine.ScreenSize

	injector input.Injector
	command  CommandPort
	upload   FileUploadPort
	chat     AiChatPort
	editorUI EditorUiPort
	secrets  SecretStore

	send chan []byte
	done chan struct{}

	unsubscribe func()
	closeOnce   sync.Once
}

// New constructs a Session over an already-upgraded connection. Start must
// be called separately to subscribe to the engine and begin pumping.
func New(conn *websocket.Conn, real engine.ScreenSize, logger *zap.Logger, opts Options) *Session {
	s := &Session{
		id:       uuid.New(),
		conn:     conn,
		real:     real,
		injector: opts.Injector,
		command:  opts.Command,
		upload:   opts.Upload,
		chat:     opts.Chat,
		editorUI: opts.EditorUI,
		secrets:  opts.Secrets,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
	s.logger = logger.With(zap.String("session_id", s.id.String()))
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// Start subscribes to the capture engine and launches the read/write
// pumps. The caller is responsible for ensuring eng is already running
// (or will start on first Subscribe).
func (s *Session) Start(eng *engine.CaptureEngine) {
	s.unsubscribe = eng.Subscribe(s.onFrame)
	go s.writePump()
	go s.readPump()
}

// onFrame is the engine's subscriber callback: it runs on the engine's own
// sampler goroutine, so it must never block; trySend never waits on a full
// send buffer.
func (s *Session) onFrame(delivery engine.Delivery) {
	switch {
	case delivery.Encoded != nil:
		s.trySend(ScreenUpdateEnvelope{
			Type:       "screen-update",
			Image:      base64.StdEncoding.EncodeToString(delivery.Encoded.Data),
			Dimensions: Dimensions{Width: delivery.Encoded.Dims.Width, Height: delivery.Encoded.Dims.Height},
		})

	case delivery.Chunked != nil:
		dims := Dimensions{Width: delivery.Chunked.Dims.Width, Height: delivery.Chunked.Dims.Height}
		for _, c := range delivery.Chunked.Chunks {
			s.trySend(ScreenUpdateChunkEnvelope{
				Type:        "screen-update-chunk",
				Chunk:       base64.StdEncoding.EncodeToString(c.Data),
				ChunkIndex:  c.Index,
				TotalChunks: c.Total,
				Dimensions:  dims,
				IsLastChunk: c.IsLastChunk,
			})
		}
	}
}

func (s *Session) trySend(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal outbound envelope", zap.Error(err))
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- data:
	case <-s.done:
	default:
		s.logger.Warn("subscriber write buffer full, disposing session")
		go s.Close()
	}
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed, closing session", zap.Error(err))
				s.Close()
				return
			}
		}
	}
}

func (s *Session) readPump() {
	defer s.Close()
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			s.handleInbound(ParseBinary(data))
		case websocket.TextMessage:
			s.handleInbound(ParseText(string(data)))
		}
	}
}

func (s *Session) handleInbound(in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling inbound message", zap.Any("recover", r))
		}
	}()

	switch in.Kind {
	case InboundMouseEvent:
		s.handleMouseEvent(in.Mouse)
	case InboundKeyboardEvent:
		s.handleKeyboardEvent(in.Keyboard)
	case InboundQualityUpdate:
		s.handleQualityUpdate(in.Quality)
	case InboundChat:
		s.handleChat(in.Text)
	case InboundCommandOrUpload:
		s.handleCommandOrUpload(in)
	}
}

// handleMouseEvent remaps a mouse event from the viewer's own coordinate
// space onto the real display before injecting it.
func (s *Session) handleMouseEvent(ev MouseEvent) {
	if s.injector == nil || ev.ScreenWidth == 0 || ev.ScreenHeight == 0 {
		return
	}

	actualX := ev.X * s.real.Width / ev.ScreenWidth
	actualY := ev.Y * s.real.Height / ev.ScreenHeight

	if err := s.injector.MoveMouse(actualX, actualY); err != nil {
		s.logger.Error("move mouse failed", zap.Error(err))
		s.sendError(err)
		return
	}

	switch ev.EventType {
	case "down":
		if err := s.injector.ToggleMouseButton(input.StateDown, input.ButtonLeft); err != nil {
			s.logger.Error("mouse button down failed", zap.Error(err))
			s.sendError(err)
		}
	case "up":
		if err := s.injector.ToggleMouseButton(input.StateUp, input.ButtonLeft); err != nil {
			s.logger.Error("mouse button up failed", zap.Error(err))
			s.sendError(err)
		}
	}
}

func (s *Session) handleKeyboardEvent(ev KeyboardEvent) {
	if s.injector == nil {
		return
	}
	if err := s.injector.TapKey(ev.Key, ev.Modifier); err != nil {
		s.logger.Error("tap key failed", zap.Error(err))
		s.sendError(err)
	}
}

func (s *Session) handleQualityUpdate(q QualityUpdate) {
	eng := engine.Instance()
	if eng == nil {
		return
	}
	eng.UpdateQuality(q.Width, q.JPEGQuality, q.FPS)
}

func (s *Session) handleChat(text string) {
	if s.chat == nil {
		return
	}
	var apiKey string
	if s.secrets != nil {
		if key, err := s.secrets.APIKey(); err == nil {
			apiKey = key
		}
	}
	reply, err := s.chat.Chat(text, apiKey)
	if err != nil {
		s.logger.Error("ai chat failed", zap.Error(err))
		s.postEditorMessage(map[string]any{"type": "error", "message": err.Error()})
		return
	}
	s.postEditorMessage(map[string]any{"type": "chat-reply", "text": reply})
}

func (s *Session) handleCommandOrUpload(in Inbound) {
	if SupportsCommand(in.Text) {
		if s.command == nil {
			return
		}
		if err := s.command.HandleCommand(in.Text, s); err != nil {
			s.logger.Error("command handling failed", zap.Error(err))
			s.sendError(err)
		}
		return
	}

	if s.upload == nil {
		return
	}
	if err := s.upload.Handle(in.Raw, s); err != nil {
		s.logger.Error("upload handling failed", zap.Error(err))
		s.sendError(err)
	}
}

func (s *Session) postEditorMessage(msg map[string]any) {
	if s.editorUI == nil {
		return
	}
	if err := s.editorUI.PostMessage(msg); err != nil {
		s.logger.Error("failed to post editor message", zap.Error(err))
	}
}

func (s *Session) sendError(err error) {
	s.trySend(ErrorEnvelope{Type: "error", Message: err.Error()})
}

// Close disposes the session: unsubscribes from the engine and closes the
// underlying connection. Safe to call more than once or concurrently;
// only the first call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.conn.Close()
	})
	return nil
}
