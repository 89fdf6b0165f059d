package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/server/common"
	"github.com/ValentinKolb/rKV/server/transport"
)

var logger = common.GetLogger("server")

// readChunkSize is the size of the per-connection read chunk. The frame
// buffer grows beyond this only for requests larger than one chunk.
const readChunkSize = 64 * 1024

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// Server accepts client connections and drives the
// decode→dispatch→encode→write loop for each of them. All connections
// share one store; everything else (buffer, decoder limits, socket) is
// owned per connection.
//
// Usage:
//
//	s, err := server.New(common.DefaultServerConfig())
//	if err != nil {
//		panic(err)
//	}
//	if err := s.Listen(); err != nil {
//		panic(err)
//	}
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
type Server struct {
	config    common.ServerConfig
	connector transport.IServerConnector
	store     *store.Store
	listener  net.Listener
}

// New creates a server for the given configuration. The store starts
// empty; nothing is persisted across restarts.
func New(config common.ServerConfig) (*Server, error) {
	connector, err := transport.New(config.Transport)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:    config,
		connector: connector,
		store:     store.New(),
	}, nil
}

// Store returns the server's store. Used by tests and embedders; the store
// is safe for concurrent use.
func (s *Server) Store() *store.Store {
	return s.store
}

// Listen creates the listener and starts the optional metrics endpoint. It
// is split from Serve so callers can learn the bound address (e.g. with a
// ":0" endpoint) before accepting.
func (s *Server) Listen() error {
	common.InitLoggers(s.config)

	listener, err := s.connector.Listen(s.config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	s.listener = listener

	logger.Infof("Starting %s server on %s", s.connector.GetName(), listener.Addr())
	logger.Infof(s.config.String())

	if s.config.MetricsEndpoint != "" {
		go serveMetrics(s.config.MetricsEndpoint)
	}

	return nil
}

// Addr returns the listener address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed. Each connection
// is handled in its own goroutine.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Errorf("Accept error: %v", err)
			continue
		}

		connectionsAccepted.Inc()
		activeConns.Add(1)
		go s.handleConnection(conn)
	}
}

// Close stops accepting new connections. Connections already being handled
// run until their socket closes.
func (s *Server) Close() error {
	return s.listener.Close()
}

// --------------------------------------------------------------------------
// Connection Handling
// --------------------------------------------------------------------------

// handleConnection processes one client connection: read bytes, decode
// frames, dispatch commands, write replies. Pipelined requests are drained
// from the buffer in order and their replies batched into a single write.
//
// The goroutine never blocks while a store operation is in flight; it only
// suspends waiting on its own socket.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer activeConns.Add(-1)

	if err := s.connector.UpgradeConnection(conn, s.config); err != nil {
		logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second
	decoder := s.newDecoder()

	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	out := make([]byte, 0, readChunkSize)

	for {
		// Drain all complete frames currently buffered
		out = out[:0]
		for len(buf) > 0 {
			frame, n, err := decoder.Decode(buf)
			if errors.Is(err, resp.ErrIncomplete) {
				break
			}
			if err != nil {
				// The stream framing can no longer be trusted: flush what
				// we owe, report the error and drop the connection
				protocolErrors.Inc()
				logger.Warningf("Protocol error from %s: %v", conn.RemoteAddr(), err)
				out = resp.AppendEncode(out, protocolErrReply(err))
				_ = s.write(conn, out, timeout)
				return
			}
			buf = buf[n:]

			reply := command.Dispatch(s.store, frame)
			commandsProcessed.Inc()
			switch reply.(type) {
			case resp.SimpleError, resp.BulkError:
				errorReplies.Inc()
			}
			out = resp.AppendEncode(out, reply)
		}

		if len(out) > 0 {
			if err := s.write(conn, out, timeout); err != nil {
				logger.Warningf("Failed to write reply to %s: %v", conn.RemoteAddr(), err)
				return
			}
		}

		// Need more bytes for the next frame
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				logger.Errorf("Failed to set read deadline: %v", err)
				return
			}
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		// Case EOF: Connection closed by client
		if err == io.EOF {
			logger.Debugf("Connection closed by client %s", conn.RemoteAddr())
			return
		}

		// Case error: log and close connection
		if err != nil {
			logger.Warningf("Read error from %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// newDecoder builds the per-connection decoder from the configured limits,
// falling back to the protocol defaults for unset values.
func (s *Server) newDecoder() *resp.Decoder {
	decoder := resp.NewDecoder()
	if s.config.MaxFrameDepth > 0 {
		decoder.MaxDepth = s.config.MaxFrameDepth
	}
	if s.config.MaxBulkSize > 0 {
		decoder.MaxBulkLen = s.config.MaxBulkSize
	}
	return decoder
}

// protocolErrReply maps a decode error to the final error reply sent
// before the connection is closed.
func protocolErrReply(err error) resp.Frame {
	var pe *resp.ProtocolError
	if errors.As(err, &pe) {
		return resp.Errorf("ERR Protocol error: %s", pe.Reason)
	}
	return resp.Errorf("ERR Protocol error: %v", err)
}

// write sends data to the connection, applying the configured deadline.
func (s *Server) write(conn net.Conn, data []byte, timeout time.Duration) error {
	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	_, err := conn.Write(data)
	return err
}
