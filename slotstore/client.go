package slotstore

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/0xRadioAc7iv/go-slotstore/internal"
	"github.com/0xRadioAc7iv/go-slotstore/internal/protocol"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

// Record is a directory entry as reported by the server.
type Record = record.Record

// ServerError is an error reported by the server for a single command.
type ServerError struct {
	Cmd     string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cmd, e.Message)
}

// Client is a single connection to a slotstore server. It is safe for
// concurrent use; commands are sent one at a time.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

func Connect(opts ...Option) (*Client, error) {
	cfg := internal.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn}, nil
}

func (c *Client) Ping() (string, error) {
	res, err := c.sendCommand("ping", "", nil)
	return string(res), err
}

func (c *Client) Create(content []byte) (Record, error) {
	return c.recordCommand("create", "", content)
}

func (c *Client) Get(id uint32) ([]byte, error) {
	return c.sendCommand("get", formatID(id), nil)
}

func (c *Client) Update(id uint32, content []byte) (Record, error) {
	return c.recordCommand("update", formatID(id), content)
}

func (c *Client) Free(id uint32) (Record, error) {
	return c.recordCommand("free", formatID(id), nil)
}

func (c *Client) Stat(id uint32) (Record, error) {
	return c.recordCommand("stat", formatID(id), nil)
}

func (c *Client) List() ([]Record, error) {
	res, err := c.sendCommand("list", "", nil)
	if err != nil {
		return nil, err
	}
	return record.DecodeAll(res)
}

func (c *Client) Count() (int, error) {
	res, err := c.sendCommand("count", "", nil)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(res))
}

func (c *Client) Stats() (string, error) {
	res, err := c.sendCommand("stats", "", nil)
	return string(res), err
}

func (c *Client) Reset() error {
	_, err := c.sendCommand("reset", "", nil)
	return err
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Execute sends any command and renders the response as text, the way the
// interactive CLI shows it.
func (c *Client) Execute(cmd, arg string, val []byte) (string, error) {
	cmd = strings.ToLower(cmd)

	res, err := c.sendCommand(cmd, arg, val)
	if err != nil {
		return "", err
	}

	switch cmd {
	case "create", "update", "free", "stat":
		r, _, err := record.DecodeFirst(res)
		if err != nil {
			return "", err
		}
		return r.String(), nil
	case "list":
		records, err := record.DecodeAll(res)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "nil", nil
		}
		lines := make([]string, len(records))
		for i, r := range records {
			lines[i] = r.String()
		}
		return strings.Join(lines, "\n"), nil
	default:
		return string(res), nil
	}
}

func (c *Client) recordCommand(cmd, arg string, val []byte) (Record, error) {
	res, err := c.sendCommand(cmd, arg, val)
	if err != nil {
		return Record{}, err
	}

	r, _, err := record.DecodeFirst(res)
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

func (c *Client) sendCommand(cmd, arg string, val []byte) ([]byte, error) {
	payload, err := protocol.EncodeCommand(cmd, arg, val)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(payload); err != nil {
		return nil, err
	}

	status, response, err := protocol.DecodeResponse(c.conn)
	if err != nil {
		return nil, err
	}

	if status != protocol.StatusOK {
		return nil, &ServerError{Cmd: cmd, Message: string(response)}
	}

	return response, nil
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
