// Package chassis runs the Latip API over TLS on TCP and QUIC on UDP,
// both bound to the same port.
//
// TCP carries HTTP/1.1 and HTTP/2. UDP connections are routed by ALPN:
// "h3" goes to HTTP/3 with the same handler, "latip-mcp-v1" to the
// MCP-over-QUIC handler. Without a cert pair a self-signed one is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/RamsisDev/Latip-Hackaton/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Config configures a Server.
type Config struct {
	Addr      string            // TCP and UDP listen address, e.g. ":8443"
	CertFile  string            // empty = self-signed
	KeyFile   string            // empty = self-signed
	DevHosts  []string          // extra SANs for the self-signed cert
	Handler   http.Handler      // API router
	MCPServer *server.MCPServer // nil disables MCP over QUIC
	Logger    *slog.Logger
}

// Server is the dual-transport front end.
type Server struct {
	addr    string
	logger  *slog.Logger
	tlsCfg  *tls.Config
	handler http.Handler
	mcp     *mcpquic.Handler

	mu     sync.Mutex
	tcp    *http.Server
	h3     *http3.Server
	quicLn *quic.Listener
}

// New loads or generates TLS material and prepares the server.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}

	var (
		tlsCfg *tls.Config
		err    error
	)
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("chassis: %w", err)
		}
		cfg.Logger.Info("tls: certificate loaded", "cert", cfg.CertFile)
	} else {
		tlsCfg, err = DevelopmentTLSConfig(cfg.DevHosts...)
		if err != nil {
			return nil, fmt.Errorf("chassis: dev cert: %w", err)
		}
		cfg.Logger.Warn("tls: using self-signed development certificate")
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: securityHeaders(altSvc(cfg.Addr, cfg.Handler)),
	}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// Start binds both listeners and serves until ctx is done or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}

	tcpLn, err := tls.Listen("tcp", s.addr, tcpTLS)
	if err != nil {
		return fmt.Errorf("tcp listen: %w", err)
	}
	quicLn, err := quic.ListenAddr(s.addr, s.tlsCfg, mcpquic.QUICConfig())
	if err != nil {
		tcpLn.Close()
		return fmt.Errorf("quic listen: %w", err)
	}

	s.mu.Lock()
	s.tcp = &http.Server{Handler: s.handler, TLSConfig: tcpTLS}
	s.h3 = &http3.Server{Handler: s.handler}
	s.quicLn = quicLn
	s.mu.Unlock()

	s.logger.Info("chassis listening", "addr", s.addr, "mcp", s.mcp != nil)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcp.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("tcp: %w", err)
		}
	}()
	go func() {
		if err := s.acceptQUIC(ctx, quicLn); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("quic accept: %w", err)
		}
		go s.dispatch(ctx, conn)
	}
}

// dispatch routes one QUIC connection by its negotiated protocol.
func (s *Server) dispatch(ctx context.Context, conn *quic.Conn) {
	alpn := conn.ConnectionState().TLS.NegotiatedProtocol
	switch {
	case alpn == "h3":
		if err := s.h3.ServeQUICConn(conn); err != nil {
			s.logger.Debug("http3 conn closed", "remote", conn.RemoteAddr(), "error", err)
		}
	case alpn == mcpquic.ALPNProtocolMCP && s.mcp != nil:
		s.mcp.ServeConn(ctx, conn)
	case alpn == mcpquic.ALPNProtocolMCP:
		conn.CloseWithError(mcpquic.ConnErrorMCPDisabled, "MCP not enabled")
	default:
		s.logger.Warn("unsupported ALPN", "alpn", alpn, "remote", conn.RemoteAddr())
		conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
	}
}

// Addr returns the bound UDP address once Start has run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quicLn == nil {
		return nil
	}
	return s.quicLn.Addr()
}

// Stop shuts down all listeners, returning the first error seen.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tcp != nil {
		errs = append(errs, s.tcp.Shutdown(ctx))
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}
