// Package store implements the server's in-memory key-value mapping with
// typed values and per-key atomic operations.
//
// The package focuses on:
//   - A closed set of value types (string, hash, list, set); a key holds
//     exactly one type for its lifetime until deleted
//   - Per-operation atomicity at key granularity: a read-modify-write such
//     as HSet is never torn by a concurrent operation on the same key, while
//     operations on distinct keys proceed without blocking each other
//   - Unified error reporting through typed error codes, so callers can map
//     a wrong-type failure to the protocol-level WRONGTYPE reply without
//     string inspection
//
// Key Components:
//
//   - Store: the shared mapping, backed by xsync.MapOf. All mutations and
//     type checks run inside MapOf.Compute, which serializes access per
//     entry; there is no global lock. Stores are plain values created with
//     New, not process-wide singletons, so tests instantiate independent
//     instances freely.
//
//   - Value Union: a tagged struct selected by ValueType. Byte slices held
//     by values are immutable by convention, which lets read operations
//     hand out slices that stay valid after the atomic section ends.
//
//   - Error System: Error{Code, Msg} with RetCode values, following the
//     same structure as the rest of the project. RetCWrongType is the only
//     code surfaced by normal operation; absent keys are never errors and
//     read as "empty of the requested type".
//
// Commands that empty a container (HDel, LPop, SRem, ...) remove the key
// itself, so a stored hash, list or set always has at least one element.
package store
