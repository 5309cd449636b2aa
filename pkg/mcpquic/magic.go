package mcpquic

import (
	"fmt"
	"io"
)

// ValidateMagicBytes consumes the stream preamble and checks it.
func ValidateMagicBytes(r io.Reader) error {
	var magic [len(MagicBytesMCP)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	if string(magic[:]) != MagicBytesMCP {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, magic[:])
	}
	return nil
}

// SendMagicBytes writes the preamble. Clients send it right after opening the stream.
func SendMagicBytes(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}
