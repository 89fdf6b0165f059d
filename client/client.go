package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/rKV/lib/resp"
)

// readChunkSize is the size of the read chunk for replies.
const readChunkSize = 16 * 1024

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config holds the client connection parameters.
type Config struct {
	// Endpoint is the server address: host:port for tcp, a socket path
	// for unix
	Endpoint string
	// Transport selects the connection type ("tcp" or "unix")
	Transport string
	// TimeoutSecond is the per-request read/write deadline in seconds
	// (0 = no deadline)
	TimeoutSecond int
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client is a minimal RESP client: it sends one command and reads one
// reply. RESP is strictly request/response per connection, so there is no
// request multiplexing; a mutex serializes concurrent callers instead.
type Client struct {
	conn    net.Conn
	decoder *resp.Decoder
	buf     []byte
	chunk   []byte
	timeout time.Duration
	mu      sync.Mutex
}

// Dial connects to the server described by config.
func Dial(config Config) (*Client, error) {
	network := config.Transport
	if network == "" {
		network = "tcp"
	}
	if network != "tcp" && network != "unix" {
		return nil, fmt.Errorf("invalid transport %s", network)
	}

	conn, err := net.Dial(network, config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", config.Endpoint, err)
	}

	return &Client{
		conn:    conn,
		decoder: resp.NewDecoder(),
		buf:     make([]byte, 0, readChunkSize),
		chunk:   make([]byte, readChunkSize),
		timeout: time.Duration(config.TimeoutSecond) * time.Second,
	}, nil
}

// Do sends a command (name plus arguments, encoded as an array of bulk
// strings) and returns the reply frame. An error reply from the server is
// returned as the frame, not as a Go error; the error return covers
// transport failures only.
func (c *Client) Do(args ...string) (resp.Frame, error) {
	if len(args) == 0 {
		return nil, errors.New("client: empty command")
	}

	request := make(resp.Array, 0, len(args))
	for _, arg := range args {
		request = append(request, resp.BulkString(arg))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	if _, err := c.conn.Write(resp.Encode(request)); err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}

	return c.readReply()
}

// readReply reads bytes until one complete frame is decoded. Leftover
// bytes stay buffered for the next reply.
func (c *Client) readReply() (resp.Frame, error) {
	for {
		if len(c.buf) > 0 {
			frame, n, err := c.decoder.Decode(c.buf)
			if err == nil {
				c.buf = c.buf[n:]
				return frame, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return nil, err
			}
		}

		n, err := c.conn.Read(c.chunk)
		if n > 0 {
			c.buf = append(c.buf, c.chunk[:n]...)
		}
		if err == io.EOF {
			return nil, errors.New("client: connection closed by server")
		}
		if err != nil {
			return nil, err
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
