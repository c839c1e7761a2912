package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Status tells the client how to read a response payload.
type Status uint8

const (
	StatusOK    Status = 0
	StatusError Status = 1 // payload is an error message
)

// EncodeResponse serializes a response as:
//
//	<status:uint8><len:uint32><payload>
func EncodeResponse(status Status, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("response too long: %d bytes", len(payload))
	}

	buf := &bytes.Buffer{}

	buf.WriteByte(byte(status))
	if err := binary.Write(buf, binary.BigEndian, uint32(len(payload))); err != nil {
		return nil, err
	}

	buf.Write(payload)

	return buf.Bytes(), nil
}

func DecodeResponse(r io.Reader) (Status, []byte, error) {
	var status Status
	var respLen uint32

	if err := binary.Read(r, binary.BigEndian, &status); err != nil {
		return 0, nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &respLen); err != nil {
		return 0, nil, err
	}

	buf := make([]byte, respLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}

	return status, buf, nil
}
