package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quic-go/quic-go"
)

// Client speaks MCP to a Latip server over QUIC.
type Client struct {
	addr    string
	name    string
	version string
	tlsCfg  *tls.Config

	conn   *quic.Conn
	stream *quic.Stream
	mcp    *client.Client
}

// NewClient prepares a client for addr. A nil tlsCfg trusts any certificate,
// which suits the self-signed development setup.
func NewClient(addr string, tlsCfg *tls.Config) *Client {
	if tlsCfg == nil {
		tlsCfg = ClientTLSConfig(true)
	}
	return &Client{addr: addr, name: "latip-remote", version: "dev", tlsCfg: tlsCfg}
}

// Connect dials, sends the preamble and performs the MCP initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := quic.DialAddr(ctx, c.addr, c.tlsCfg, QUICConfig())
	if err != nil {
		return fmt.Errorf("quic dial %s: %w", c.addr, err)
	}

	if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
		conn.CloseWithError(ConnErrorUnsupportedALPN, "bad ALPN")
		return &ConnectionError{
			RemoteAddr: c.addr,
			Code:       ConnErrorUnsupportedALPN,
			Err:        fmt.Errorf("%w: got %q", ErrUnsupportedALPN, alpn),
		}
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(ConnErrorProtocolViolation, "stream open failed")
		return fmt.Errorf("open stream: %w", err)
	}
	if err := SendMagicBytes(stream); err != nil {
		stream.Close()
		conn.CloseWithError(ConnErrorProtocolViolation, "magic bytes failed")
		return err
	}
	c.conn, c.stream = conn, stream

	mc := client.NewClient(transport.NewIO(stream, streamWriter{stream}, io.NopCloser(strings.NewReader(""))))
	if err := mc.Start(ctx); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: c.name, Version: c.version}

	initCtx, cancel := context.WithTimeout(ctx, DefaultHandshakeTimeout)
	defer cancel()
	if _, err := mc.Initialize(initCtx, initReq); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp initialize: %w", err)
	}
	c.mcp = mc
	return nil
}

func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.mcp == nil {
		return nil, ErrNotConnected
	}
	return c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
}

func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if c.mcp == nil {
		return nil, ErrNotConnected
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.mcp.CallTool(ctx, req)
}

// CallText calls a tool and joins its text content. A tool-level error is
// returned as ErrToolFailed wrapping the tool's message.
func (c *Client) CallText(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	var b strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("%w: %s: %s", ErrToolFailed, name, b.String())
	}
	return b.String(), nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.mcp == nil {
		return ErrNotConnected
	}
	return c.mcp.Ping(ctx)
}

func (c *Client) Close() error {
	if c.mcp != nil {
		c.mcp.Close()
		c.mcp = nil
	}
	return c.closeTransport()
}

func (c *Client) closeTransport() error {
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
	if c.conn != nil {
		err := c.conn.CloseWithError(ConnErrorNoError, "client closing")
		c.conn = nil
		return err
	}
	return nil
}

// streamWriter gives the stdio transport a WriteCloser whose Close only
// half-closes the QUIC stream.
type streamWriter struct{ s *quic.Stream }

func (w streamWriter) Write(p []byte) (int, error) { return w.s.Write(p) }
func (w streamWriter) Close() error                { return w.s.Close() }
