// Package server ties the pieces together: it accepts client connections
// through a transport connector and runs one goroutine per connection that
// decodes RESP frames, dispatches them to the command engine and writes
// the encoded replies back.
//
// Concurrency model: connections coordinate only through the shared store,
// which is atomic per key; there is no global command lock. A connection
// goroutine suspends only on its own socket, never while a store operation
// is in flight, so no client can observe a half-applied command. A fatal
// error (protocol desynchronization, socket failure) ends exactly that
// connection; the store and all other connections are unaffected.
//
// Pipelining: all complete frames in the read buffer are processed in
// order and their replies are batched into a single write.
//
// When a metrics endpoint is configured, the package serves Prometheus
// metrics and the pprof handlers over HTTP.
package server
