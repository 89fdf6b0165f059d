package common

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/resp"
)

// --------------------------------------------------------------------------
// Socket configuration structs
// --------------------------------------------------------------------------

// SocketConf holds tuning knobs shared by all stream transports.
type SocketConf struct {
	// WriteBufferSize is the socket write buffer size in bytes (0 = OS default)
	WriteBufferSize int
	// ReadBufferSize is the socket read buffer size in bytes (0 = OS default)
	ReadBufferSize int
}

// TCPConf holds TCP-specific tuning knobs, ignored by other transports.
type TCPConf struct {
	// TCPNoDelay disables Nagle's algorithm when true
	TCPNoDelay bool
	// TCPKeepAliveSec enables keep-alive with the given period (0 = disabled)
	TCPKeepAliveSec int
	// TCPLingerSec sets the linger timeout (negative = OS default)
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the server.
type ServerConfig struct {
	// Endpoint is the address to listen on: host:port for tcp, a socket
	// path for unix
	Endpoint string

	// Transport selects the listener type ("tcp" or "unix")
	Transport string

	// TimeoutSecond is the per-connection idle read/write deadline in
	// seconds (0 = no deadline)
	TimeoutSecond int64

	// Frame decoding limits
	MaxFrameDepth int // maximum nesting of aggregate frames
	MaxBulkSize   int // maximum declared bulk payload size in bytes

	// Socket tuning
	Socket SocketConf
	TCP    TCPConf

	// MetricsEndpoint is the optional address of the HTTP endpoint serving
	// /metrics and pprof ("" = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns a config with the default redis port and the
// default frame limits.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:      "0.0.0.0:6379",
		Transport:     "tcp",
		MaxFrameDepth: resp.DefaultMaxDepth,
		MaxBulkSize:   resp.DefaultMaxBulkLen,
		TCP:           TCPConf{TCPNoDelay: true},
		LogLevel:      "info",
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Server settings
	addSection("Server")
	addField("Transport", c.Transport)
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Protocol limits
	addSection("Protocol Limits")
	addField("Max Frame Depth", fmt.Sprintf("%d", c.MaxFrameDepth))
	addField("Max Bulk Size", fmt.Sprintf("%d bytes", c.MaxBulkSize))

	// Socket tuning
	addSection("Socket")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Socket.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Socket.ReadBufferSize))
	if c.Transport == "tcp" {
		addField("TCP NoDelay", fmt.Sprintf("%t", c.TCP.TCPNoDelay))
		addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.TCP.TCPKeepAliveSec))
		addField("TCP Linger", fmt.Sprintf("%d sec", c.TCP.TCPLingerSec))
	}

	// Observability
	addSection("Observability")
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}
	addField("Log Level", c.LogLevel)

	return sb.String()
}
