// Package resp implements the RESP wire protocol: the frame model shared by
// client requests and server replies, plus the codec that maps frames to and
// from their byte representation.
//
// The package focuses on:
//   - A closed set of frame types covering the full RESP3 vocabulary
//     (simple string/error, integer, double, boolean, null, bulk
//     string/error, array, map, set)
//   - A total, deterministic encoder: every legal frame has exactly one wire
//     form and Decode(Encode(f)) round-trips
//   - A chunk-tolerant decoder built for streaming sockets: partial input is
//     reported as ErrIncomplete without consuming bytes, malformed input as
//     a typed ProtocolError, never a panic
//
// Key Components:
//
//   - Frame Interface: the sealed union of all wire types. Null-able types
//     (BulkString, Array) use a nil slice for the wire null sentinel, which
//     is distinct from the empty value.
//
//   - Decoder: dispatches on the one-byte type prefix and parses each
//     variant with its own terminator or length convention. Aggregates are
//     decoded by bounded recursion with a configurable maximum depth, so
//     adversarial deeply-nested input fails with a ProtocolError instead of
//     overflowing the stack. Declared bulk lengths and element counts are
//     capped the same way.
//
//   - Encoder: append-based depth-first serialization, shared between the
//     server reply path and the client request path.
//
// The codec is stateless between calls and requires no locking; each
// connection owns its read buffer exclusively.
package resp
