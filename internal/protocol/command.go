package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Limits on a single command frame. Headers announcing more are rejected
// before anything is allocated.
const (
	MaxArgSize   = 1 << 10
	MaxValueSize = 64 << 20
)

// ErrFrameTooLarge is returned for a command whose argument or value exceeds
// MaxArgSize or MaxValueSize.
var ErrFrameTooLarge = errors.New("protocol: command frame too large")

// Command represents a decoded client command received by the slotstore
// server.
//
// A Command consists of a command name (Cmd), an optional argument (Arg),
// and an optional value (Val). Arg carries a slot id in decimal for commands
// that address a slot (get, update, free, stat); Val carries raw content for
// create and update.
type Command struct {
	Cmd string // Command name (e.g. "create", "get", "free")
	Arg string // Argument (may be empty)
	Val []byte // Content payload (may be empty)
}

// EncodeCommand serializes a client command into its wire format.
//
// The command is encoded as:
//
//	<cmd_len:uint8><arg_len:uint32><val_len:uint32><cmd><arg><val>
//
// All integer fields are encoded using big-endian byte order.
// The command name length is limited to 255 bytes.
func EncodeCommand(cmd, arg string, val []byte) ([]byte, error) {
	if len(cmd) > math.MaxUint8 {
		return nil, fmt.Errorf("command name too long: %d bytes", len(cmd))
	}
	if len(arg) > MaxArgSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "argument is %d bytes", len(arg))
	}
	if len(val) > MaxValueSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "value is %d bytes", len(val))
	}

	buf := &bytes.Buffer{}

	buf.WriteByte(uint8(len(cmd)))
	if err := binary.Write(buf, binary.BigEndian, uint32(len(arg))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(val))); err != nil {
		return nil, err
	}

	buf.WriteString(cmd)
	buf.WriteString(arg)
	buf.Write(val)

	return buf.Bytes(), nil
}

// DecodeCommand reads and decodes a command from r.
//
// It first reads the length-prefixed header fields, then reads the
// command name, argument, and value payloads in sequence.
//
// DecodeCommand blocks until the full command has been read or an
// error occurs. Oversized frames fail with ErrFrameTooLarge and leave the
// rest of the frame unread.
func DecodeCommand(r io.Reader) (*Command, error) {
	var cmdLen uint8
	var argLen uint32
	var valLen uint32

	// Read lengths
	if err := binary.Read(r, binary.BigEndian, &cmdLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &argLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &valLen); err != nil {
		return nil, err
	}

	if argLen > MaxArgSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "argument is %d bytes", argLen)
	}
	if valLen > MaxValueSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "value is %d bytes", valLen)
	}

	// Read payload
	cmdB := make([]byte, cmdLen)
	argB := make([]byte, argLen)
	valB := make([]byte, valLen)

	if _, err := io.ReadFull(r, cmdB); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, argB); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, valB); err != nil {
		return nil, err
	}

	return &Command{
		Cmd: string(cmdB),
		Arg: string(argB),
		Val: valB,
	}, nil
}
