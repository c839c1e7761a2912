package core

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/0xRadioAc7iv/go-slotstore/internal/protocol"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

// ErrInvalidCommand is replied for unknown commands and malformed arguments.
var ErrInvalidCommand = errors.New("slotstore: invalid command")

const helpString = `
Available Commands:

PING
  Check if the server is alive.
  Response: PONG!

CREATE <content>
  Store content in a new or reused slot.
  Response: record

GET <id>
  Retrieve the content of a live slot.
  Response: content | error

UPDATE <id> <content>
  Replace the content of a live slot. Content larger than the slot frees it
  and moves to another slot.
  Response: record (check the id)

FREE <id>
  Mark a slot reusable.
  Response: record

STAT <id>
  Show a slot's record, live or free.
  Response: record

LIST
  List all slots.
  Response: records

COUNT
  Return the number of live slots.
  Response: integer

STATS
  Show store usage.

RESET
  Discard all slots and content.
  Response: ok

HELP (cli only)
  Show this help message.

EXIT (cli only)
  Close the client connection.
`

func (s *Slotstore) commandHandler(conn net.Conn) {
	defer conn.Close()

	for {
		command, err := protocol.DecodeCommand(conn)
		if errors.Is(err, protocol.ErrFrameTooLarge) {
			s.Logger.WithError(err).WithField("remote", conn.RemoteAddr().String()).Warn("rejected command")
			s.reply(conn, protocol.StatusError, []byte(err.Error()))
			return
		}
		if err != nil {
			s.Logger.WithField("remote", conn.RemoteAddr().String()).Debug("client disconnected")
			return
		}

		s.handleCommand(command, conn)
	}
}

func (s *Slotstore) handleCommand(command *protocol.Command, conn net.Conn) {
	cmd := strings.ToLower(command.Cmd)

	payload, err := s.dispatch(cmd, command)
	if err != nil {
		s.Logger.WithError(err).WithField("cmd", cmd).Warn("command failed")
		s.reply(conn, protocol.StatusError, []byte(err.Error()))
		return
	}

	s.reply(conn, protocol.StatusOK, payload)
}

func (s *Slotstore) dispatch(cmd string, command *protocol.Command) ([]byte, error) {
	switch cmd {
	case "ping":
		return []byte("PONG!"), nil

	case "create":
		r, err := s.Create(command.Val)
		if err != nil {
			return nil, err
		}
		return record.Encode(r), nil

	case "get":
		id, err := parseID(command.Arg)
		if err != nil {
			return nil, err
		}
		return s.Get(id)

	case "update":
		id, err := parseID(command.Arg)
		if err != nil {
			return nil, err
		}
		r, err := s.Update(id, command.Val)
		if err != nil {
			return nil, err
		}
		return record.Encode(r), nil

	case "free":
		id, err := parseID(command.Arg)
		if err != nil {
			return nil, err
		}
		r, err := s.Free(id)
		if err != nil {
			return nil, err
		}
		return record.Encode(r), nil

	case "stat":
		id, err := parseID(command.Arg)
		if err != nil {
			return nil, err
		}
		r, err := s.Record(id)
		if err != nil {
			return nil, err
		}
		return record.Encode(r), nil

	case "list":
		records, err := s.List()
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, len(records)*record.Size)
		for _, r := range records {
			out = append(out, record.Encode(r)...)
		}
		return out, nil

	case "count":
		n, err := s.Count()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(n)), nil

	case "stats":
		st, err := s.Stats()
		if err != nil {
			return nil, err
		}
		return []byte(st.String()), nil

	case "reset":
		if err := s.Reset(); err != nil {
			return nil, err
		}
		return []byte("ok"), nil

	case "help":
		return []byte(strings.TrimSpace(helpString)), nil

	default:
		return nil, errors.Wrapf(ErrInvalidCommand, "%q", cmd)
	}
}

func parseID(arg string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidCommand, "bad slot id %q", arg)
	}
	return uint32(id), nil
}

func (s *Slotstore) reply(conn net.Conn, status protocol.Status, payload []byte) {
	encodedResponse, err := protocol.EncodeResponse(status, payload)
	if err != nil {
		s.Logger.WithError(err).Error("error encoding response")
		return
	}

	if _, err := conn.Write(encodedResponse); err != nil {
		s.Logger.WithError(err).Debug("client disconnected")
	}
}
