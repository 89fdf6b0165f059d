package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/client"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/server/common"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// startServer spins up a server on an ephemeral port and returns it with a
// cleanup already registered
func startServer(t *testing.T) *Server {
	t.Helper()

	config := common.DefaultServerConfig()
	config.Endpoint = "127.0.0.1:0"
	config.LogLevel = "error"

	s, err := New(config)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	if err := s.Listen(); err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() {
		_ = s.Serve()
	}()
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// dial connects a test client to the server
func dial(t *testing.T, s *Server) *client.Client {
	t.Helper()

	c, err := client.Dial(client.Config{
		Endpoint:      s.Addr().String(),
		Transport:     "tcp",
		TimeoutSecond: 5,
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestServerBasicCommands(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	reply, err := c.Do("PING")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != resp.SimpleString("PONG") {
		t.Errorf("expected PONG, got %#v", reply)
	}

	reply, err = c.Do("SET", "key", "value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != resp.OK {
		t.Errorf("expected OK, got %#v", reply)
	}

	reply, err = c.Do("GET", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bulk, ok := reply.(resp.BulkString)
	if !ok || !bytes.Equal(bulk, []byte("value")) {
		t.Errorf("expected value, got %#v", reply)
	}

	reply, err = c.Do("GET", "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reply.(resp.Null); !ok {
		t.Errorf("expected null reply, got %#v", reply)
	}
}

func TestServerErrorReplies(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	reply, err := c.Do("NOSUCHCMD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != resp.SimpleError("ERR unknown command 'nosuchcmd'") {
		t.Errorf("expected unknown command error, got %#v", reply)
	}

	// An error reply must not kill the connection
	reply, err = c.Do("PING")
	if err != nil {
		t.Fatalf("expected connection to survive an error reply: %v", err)
	}
	if reply != resp.SimpleString("PONG") {
		t.Errorf("expected PONG, got %#v", reply)
	}

	if _, err := c.Do("SET", "str", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err = c.Do("HGET", "str", "f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	errReply, ok := reply.(resp.SimpleError)
	if !ok || !bytes.HasPrefix([]byte(errReply), []byte("WRONGTYPE")) {
		t.Errorf("expected WRONGTYPE error, got %#v", reply)
	}
}

func TestServerHashWorkflow(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	if _, err := c.Do("HSET", "h", "a", "1", "b", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := c.Do("HGETALL", "h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := reply.(resp.Map)
	if !ok {
		t.Fatalf("expected a map reply, got %#v", reply)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	// Insertion order must survive the round trip over the wire
	if !bytes.Equal(m[0].Key.(resp.BulkString), []byte("a")) ||
		!bytes.Equal(m[1].Key.(resp.BulkString), []byte("b")) {
		t.Errorf("expected fields in insertion order, got %#v", m)
	}
}

// Pipelined requests are answered in order on one connection
func TestServerPipelining(t *testing.T) {
	s := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	// Send several requests in one write
	var out []byte
	out = resp.AppendEncode(out, resp.Array{resp.BulkString("SET"), resp.BulkString("k"), resp.BulkString("v")})
	out = resp.AppendEncode(out, resp.Array{resp.BulkString("GET"), resp.BulkString("k")})
	out = resp.AppendEncode(out, resp.Array{resp.BulkString("PING")})
	if _, err := conn.Write(out); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	want := []resp.Frame{
		resp.OK,
		resp.BulkString("v"),
		resp.SimpleString("PONG"),
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var buf []byte
	chunk := make([]byte, 4096)
	for _, wantFrame := range want {
		for {
			frame, n, err := resp.Decode(buf)
			if err == nil {
				buf = buf[n:]
				if !bytes.Equal(resp.Encode(frame), resp.Encode(wantFrame)) {
					t.Fatalf("expected %#v, got %#v", wantFrame, frame)
				}
				break
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				t.Fatalf("unexpected decode error: %v", err)
			}

			n, rerr := conn.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if rerr != nil {
				t.Fatalf("unexpected read error: %v", rerr)
			}
		}
	}
}

// A protocol error yields one final error reply, then the server closes the
// connection
func TestServerProtocolErrorClosesConnection(t *testing.T) {
	s := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("?bogus\r\n")); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("expected clean close after error reply, got %v", err)
	}

	frame, _, err := resp.Decode(data)
	if err != nil {
		t.Fatalf("expected a decodable error reply, got %q (%v)", data, err)
	}
	errReply, ok := frame.(resp.SimpleError)
	if !ok || !bytes.HasPrefix([]byte(errReply), []byte("ERR Protocol error")) {
		t.Errorf("expected protocol error reply, got %#v", frame)
	}
}

// A request split across many writes is buffered until complete
func TestServerFragmentedRequest(t *testing.T) {
	s := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	wire := resp.Encode(resp.Array{resp.BulkString("PING")})
	for _, b := range wire {
		if _, err := conn.Write([]byte{b}); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	reply := make([]byte, 64)
	n, err := conn.Read(reply)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if !bytes.Equal(reply[:n], []byte("+PONG\r\n")) {
		t.Errorf("expected +PONG, got %q", reply[:n])
	}
}

func TestServerConcurrentClients(t *testing.T) {
	s := startServer(t)

	const clients = 8
	const iterations = 50

	var wg sync.WaitGroup
	errCh := make(chan error, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			c, err := client.Dial(client.Config{
				Endpoint:      s.Addr().String(),
				Transport:     "tcp",
				TimeoutSecond: 5,
			})
			if err != nil {
				errCh <- err
				return
			}
			defer c.Close()

			key := fmt.Sprintf("client-%d", id)
			for j := 0; j < iterations; j++ {
				val := fmt.Sprintf("v%d", j)
				if _, err := c.Do("SET", key, val); err != nil {
					errCh <- err
					return
				}
				reply, err := c.Do("GET", key)
				if err != nil {
					errCh <- err
					return
				}
				bulk, ok := reply.(resp.BulkString)
				if !ok || string(bulk) != val {
					errCh <- fmt.Errorf("client %d: expected %q, got %#v", id, val, reply)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Error(err)
	}

	if n := s.Store().Size(); n != clients {
		t.Errorf("expected %d keys, got %d", clients, n)
	}
}

func TestServerUnixTransport(t *testing.T) {
	config := common.DefaultServerConfig()
	config.Transport = "unix"
	config.Endpoint = t.TempDir() + "/rkv.sock"
	config.LogLevel = "error"

	s, err := New(config)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	if err := s.Listen(); err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() {
		_ = s.Serve()
	}()
	defer s.Close()

	c, err := client.Dial(client.Config{
		Endpoint:      config.Endpoint,
		Transport:     "unix",
		TimeoutSecond: 5,
	})
	if err != nil {
		t.Fatalf("failed to connect over unix socket: %v", err)
	}
	defer c.Close()

	reply, err := c.Do("PING")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != resp.SimpleString("PONG") {
		t.Errorf("expected PONG, got %#v", reply)
	}
}
