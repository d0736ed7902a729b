package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload is the largest payload a frame can carry.
const MaxPayload = 0xFFFF - 2

// ErrFrameLength reports a frame header whose length cannot be valid.
var ErrFrameLength = errors.New("invalid frame length")

// ReadFrame reads one tracker frame from r and returns its payload.
// Wire format: [2 bytes LE: total length including header][payload]; the
// payload starts with the opcode byte.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	n := total - 2
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrFrameLength, total)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", n, err)
	}
	return payload, nil
}

// WriteFrame writes payload to w as a single frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxPayload {
		return fmt.Errorf("%w: payload of %d bytes", ErrFrameLength, len(payload))
	}
	buf := make([]byte, 2, 2+len(payload))
	binary.LittleEndian.PutUint16(buf, uint16(len(payload)+2))
	buf = append(buf, payload...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
