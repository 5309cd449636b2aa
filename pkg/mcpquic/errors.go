package mcpquic

import (
	"errors"
	"fmt"

	"github.com/quic-go/quic-go"
)

// Stream-level error codes.
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// Connection-level error codes.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
	ConnErrorMCPDisabled       quic.ApplicationErrorCode = 0x10
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes: expected " + MagicBytesMCP)
	ErrUnsupportedALPN   = errors.New("ALPN negotiation failed: " + ALPNProtocolMCP + " not selected")
	ErrNotConnected      = errors.New("mcpquic: client not connected")
	ErrToolFailed        = errors.New("mcpquic: tool returned an error")
)

// ConnectionError reports a connection torn down with an application code.
type ConnectionError struct {
	RemoteAddr string
	Code       quic.ApplicationErrorCode
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s error code 0x%02x: %v", e.RemoteAddr, uint64(e.Code), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
