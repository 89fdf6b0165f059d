// Package client provides a minimal RESP client used by the CLI, the perf
// tool and the integration tests.
//
// The client is deliberately small: Dial opens one tcp or unix connection,
// Do sends one command and waits for its reply, Close hangs up. Concurrent
// callers are serialized with a mutex since RESP replies carry no request
// id to multiplex on.
package client
