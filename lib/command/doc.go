// Package command implements the command execution engine: it maps decoded
// request frames onto typed store operations and produces reply frames with
// redis semantics.
//
// The package focuses on:
//   - A registry mapping the command name to its arity contract and handler,
//     so new commands slot in without touching the dispatch core
//   - Strict request validation: a request must be a non-empty array of bulk
//     strings, the first element selects the command case-insensitively
//   - Redis-exact error replies: unknown command, arity mismatch and
//     wrong-type failures are SimpleError replies and never touch storage;
//     they are non-fatal to the connection
//
// Command families are registered from per-family files (string.go,
// hash.go, list.go, set.go, generic.go) via init. Handlers receive the raw
// positional arguments as byte sequences and return the complete reply
// frame; they never return Go errors and never panic on malformed input.
//
// Reply shape decisions: absent keys and fields reply with the RESP3 null
// frame, HGETALL replies with a native map in field insertion order and
// SMEMBERS with a native set frame.
package command
