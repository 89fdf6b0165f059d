package resp

import "fmt"

// --------------------------------------------------------------------------
// Frame Interface
// --------------------------------------------------------------------------

// Frame is one unit of the RESP wire protocol, either received as a client
// request or sent back as a server reply. The set of implementations is
// closed: every RESP3 wire type maps to exactly one Frame type in this
// package and nothing else satisfies the interface.
//
// Frames are treated as immutable once constructed. The decoder always
// returns freshly allocated frames that share no memory with the input
// buffer, so a frame may be retained or passed between goroutines freely.
type Frame interface {
	// appendRESP appends the exact wire representation of the frame to dst
	// and returns the extended slice. It doubles as the sealing method.
	appendRESP(dst []byte) []byte
}

// --------------------------------------------------------------------------
// Simple Types
// --------------------------------------------------------------------------

// SimpleString is a line-terminated string ("+OK\r\n"). It must not contain
// CR or LF; the encoder does not escape them.
type SimpleString string

// SimpleError is a line-terminated error reply ("-ERR ...\r\n"). It is a
// distinct type from SimpleString so callers can branch on success/failure
// without inspecting the payload.
type SimpleError string

// Integer is a signed 64-bit integer (":+42\r\n").
type Integer int64

// Double is a 64-bit float (",+3.14\r\n"). Non-finite values encode as
// "+inf", "-inf" and "nan".
type Double float64

// Boolean encodes as "#t\r\n" or "#f\r\n".
type Boolean bool

// Null is the RESP3 null type ("_\r\n").
type Null struct{}

// --------------------------------------------------------------------------
// Bulk Types
// --------------------------------------------------------------------------

// BulkString is a length-prefixed binary string. A nil BulkString is the
// null bulk string ("$-1\r\n") and is distinct from an empty one ("$0\r\n").
type BulkString []byte

// BulkError is the bulk variant of an error reply ("!<len>\r\n...").
// Unlike BulkString it has no null form; a nil BulkError encodes as empty.
type BulkError []byte

// --------------------------------------------------------------------------
// Aggregate Types
// --------------------------------------------------------------------------

// Array is an ordered sequence of frames. A nil Array is the null array
// ("*-1\r\n") and is distinct from an empty one ("*0\r\n").
type Array []Frame

// MapEntry is one key-value pair of a Map frame.
type MapEntry struct {
	Key   Frame
	Value Frame
}

// Map is an ordered sequence of key-value pairs ("%<n>\r\n..."). Insertion
// order is preserved on both encode and decode. Key uniqueness is not
// enforced at the wire level.
type Map []MapEntry

// Set is an ordered sequence of frames ("~<n>\r\n..."). Element uniqueness
// is a protocol-level convention and not enforced here.
type Set []Frame

// --------------------------------------------------------------------------
// Shared Reply Values
// --------------------------------------------------------------------------

// OK is the canonical success reply.
const OK = SimpleString("OK")

// Errorf builds a SimpleError reply from a format string.
func Errorf(format string, args ...interface{}) SimpleError {
	return SimpleError(fmt.Sprintf(format, args...))
}
