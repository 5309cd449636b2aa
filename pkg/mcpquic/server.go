package mcpquic

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/RamsisDev/Latip-Hackaton/pkg/kit"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
)

// Handler serves MCP sessions on QUIC connections it is handed. It owns no
// listener, so the chassis can share one UDP socket with HTTP/3.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
	active    atomic.Int64
}

func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// ActiveSessions reports how many sessions are being served.
func (h *Handler) ActiveSessions() int64 { return h.active.Load() }

// ServeConn runs one MCP session on the first stream the peer opens and
// returns when the peer hangs up or ctx is cancelled.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp: accept stream", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}
	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Warn("mcp: rejected stream", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	sess := newSession("quic_"+uuid.NewString()[:8], stream)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp: register session", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)

	h.active.Add(1)
	defer h.active.Add(-1)
	h.logger.Info("mcp session started", "session", sess.id, "remote", remote)

	ctx, cancel := context.WithCancel(kit.WithTransport(ctx, "mcp_quic"))
	defer cancel()
	ctx = h.mcpServer.WithContext(ctx, sess)
	go sess.forwardNotifications(ctx)

	err = h.serveStream(ctx, sess, stream)
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		h.logger.Warn("mcp: message too large", "session", sess.id, "limit", MaxMessageSize)
		stream.CancelRead(StreamErrorMessageTooLarge)
		stream.CancelWrite(StreamErrorMessageTooLarge)
	case err != nil && ctx.Err() == nil:
		h.logger.Warn("mcp: session error", "session", sess.id, "error", err)
	}
	stream.Close()
	h.logger.Info("mcp session ended", "session", sess.id, "remote", remote)
}

// serveStream answers newline-delimited JSON-RPC requests until EOF.
func (h *Handler) serveStream(ctx context.Context, sess *session, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if resp == nil {
			continue
		}
		if err := sess.send(resp); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Listener is a standalone MCP-over-QUIC server for deployments that do
// not run the chassis.
type Listener struct {
	listener *quic.Listener
	handler  *Handler
	logger   *slog.Logger
}

func NewListener(addr string, tlsCfg *tls.Config, mcpSrv *server.MCPServer, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := quic.ListenAddr(addr, tlsCfg, QUICConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen %s: %w", addr, err)
	}
	logger.Info("mcp quic listener ready", "addr", l.Addr().String())
	return &Listener{listener: l, handler: NewHandler(mcpSrv, logger), logger: logger}, nil
}

// Addr is the bound UDP address.
func (l *Listener) Addr() net.Addr { return l.listener.Addr() }

// Serve accepts connections until ctx is cancelled or the listener closes.
func (l *Listener) Serve(ctx context.Context) error {
	for {
		conn, err := l.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			l.logger.Error("quic accept", "error", err)
			continue
		}

		if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
			conn.CloseWithError(ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
			continue
		}
		go l.handler.ServeConn(ctx, conn)
	}
}

func (l *Listener) Close() error {
	return l.listener.Close()
}

// session implements server.ClientSession. Responses and server
// notifications share the stream, so writes are serialised.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

func newSession(id string, w io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		w:             w,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			_ = s.send(n)
		case <-ctx.Done():
			return
		}
	}
}
