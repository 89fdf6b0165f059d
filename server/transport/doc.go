// Package transport provides the connection acceptors for the server: the
// IServerConnector interface plus the tcp and unix implementations.
//
// A connector only knows how to create a listener and how to tune an
// accepted connection (buffer sizes, TCP_NODELAY, keep-alive). Everything
// protocol-related happens in the server package, so adding a transport
// means implementing the two connector methods and registering it in New.
package transport
