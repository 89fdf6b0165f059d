package transport

import (
	"fmt"
	"net"

	"github.com/ValentinKolb/rKV/server/common"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IServerConnector defines the transport-specific part of the server: how
// the listener is created and how an accepted connection is tuned. The
// connection loop itself is transport-agnostic and lives in the server
// package.
type IServerConnector interface {
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies transport-specific settings to an accepted
	// connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Connector Factory Method
// --------------------------------------------------------------------------

// New returns the connector for the given transport name.
func New(name string) (IServerConnector, error) {
	switch name {
	case "tcp":
		return &tcpConnector{}, nil
	case "unix":
		return &unixConnector{}, nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}
