package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// --------------------------------------------------------------------------
// Error Types
// --------------------------------------------------------------------------

// ErrIncomplete is returned by Decode when the buffer holds a well-formed
// but truncated frame. The caller must keep the buffer as-is, append more
// bytes and retry; no input is consumed on this result.
var ErrIncomplete = errors.New("resp: incomplete frame")

// ProtocolError reports malformed input: an unknown type prefix, a garbled
// length, a missing terminator or a frame exceeding the configured limits.
// It is fatal to the connection the bytes came from, since the stream
// framing can no longer be trusted.
type ProtocolError struct {
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("resp: protocol error: %s", e.Reason)
}

// protoErrf creates a new ProtocolError with a formatted reason.
func protoErrf(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

// Default decoder limits. These match the limits redis itself ships with
// where one exists (512 MB proto-max-bulk-len).
const (
	DefaultMaxDepth    = 32
	DefaultMaxBulkLen  = 512 << 20
	DefaultMaxElements = 1 << 20
)

// Decoder decodes frames from a caller-owned byte buffer. The zero value is
// not ready for use; create instances with NewDecoder and adjust the limits
// before the first Decode call if needed.
//
// A Decoder holds no state between calls, so one instance may be reused for
// every frame of a connection. It must not be shared between connections
// that decode concurrently only because the limits are plain fields; the
// Decode method itself is read-only and safe for concurrent use.
type Decoder struct {
	// MaxDepth caps the nesting of aggregate frames. Input nested deeper
	// fails with a ProtocolError instead of growing the call stack without
	// bound.
	MaxDepth int

	// MaxBulkLen caps the declared length of bulk strings and bulk errors.
	MaxBulkLen int

	// MaxElements caps the declared element count of arrays, maps and sets.
	MaxElements int
}

// NewDecoder creates a decoder with the default limits.
func NewDecoder() *Decoder {
	return &Decoder{
		MaxDepth:    DefaultMaxDepth,
		MaxBulkLen:  DefaultMaxBulkLen,
		MaxElements: DefaultMaxElements,
	}
}

// defaultDecoder backs the package-level Decode function.
var defaultDecoder = NewDecoder()

// Decode decodes one frame from buf using the default limits. See
// Decoder.Decode for the contract.
func Decode(buf []byte) (Frame, int, error) {
	return defaultDecoder.Decode(buf)
}

// Decode parses one frame from the start of buf and returns it together
// with the number of bytes consumed. The buffer is never mutated.
//
// The outcome is exactly one of:
//   - (frame, n, nil): a complete frame occupying buf[:n]
//   - (nil, 0, ErrIncomplete): well-formed so far but truncated; retry with
//     more bytes appended
//   - (nil, 0, *ProtocolError): malformed input, connection-fatal
//
// Aggregates are re-parsed from their start on every call, so feeding
// progressively longer prefixes of a stream eventually yields the same
// complete frame with the same byte count (decode is idempotent under
// buffer growth).
func (d *Decoder) Decode(buf []byte) (Frame, int, error) {
	frame, pos, err := d.decode(buf, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	return frame, pos, nil
}

// --------------------------------------------------------------------------
// Internal Parsing
// --------------------------------------------------------------------------

// decode parses one frame starting at pos and returns it with the position
// of the first byte after the frame. depth counts the enclosing aggregates.
func (d *Decoder) decode(buf []byte, pos, depth int) (Frame, int, error) {
	if pos >= len(buf) {
		return nil, 0, ErrIncomplete
	}

	prefix := buf[pos]
	pos++

	switch prefix {
	case '+':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		return SimpleString(line), next, nil

	case '-':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		return SimpleError(line), next, nil

	case ':':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		n, perr := strconv.ParseInt(string(line), 10, 64)
		if perr != nil {
			return nil, 0, protoErrf("invalid integer %q", line)
		}
		return Integer(n), next, nil

	case ',':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		f, perr := strconv.ParseFloat(string(line), 64)
		if perr != nil {
			return nil, 0, protoErrf("invalid double %q", line)
		}
		return Double(f), next, nil

	case '#':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		switch string(line) {
		case "t":
			return Boolean(true), next, nil
		case "f":
			return Boolean(false), next, nil
		default:
			return nil, 0, protoErrf("invalid boolean %q", line)
		}

	case '_':
		line, next, err := readLine(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		if len(line) != 0 {
			return nil, 0, protoErrf("unexpected payload %q for null", line)
		}
		return Null{}, next, nil

	case '$', '!':
		return d.decodeBulk(buf, pos, prefix)

	case '*', '%', '~':
		return d.decodeAggregate(buf, pos, depth, prefix)

	default:
		return nil, 0, protoErrf("invalid type prefix %q", prefix)
	}
}

// decodeBulk parses the body of a bulk string ('$') or bulk error ('!').
func (d *Decoder) decodeBulk(buf []byte, pos int, prefix byte) (Frame, int, error) {
	length, next, err := readLength(buf, pos)
	if err != nil {
		return nil, 0, err
	}

	// Null sentinel, only legal for bulk strings
	if length == -1 {
		if prefix == '!' {
			return nil, 0, protoErrf("negative bulk error length")
		}
		return BulkString(nil), next, nil
	}
	if length < 0 {
		return nil, 0, protoErrf("negative bulk length %d", length)
	}
	if length > int64(d.MaxBulkLen) {
		return nil, 0, protoErrf("bulk length %d exceeds limit %d", length, d.MaxBulkLen)
	}

	n := int(length)
	if len(buf)-next < n+2 {
		return nil, 0, ErrIncomplete
	}
	if buf[next+n] != '\r' || buf[next+n+1] != '\n' {
		return nil, 0, protoErrf("bulk payload not CRLF terminated")
	}

	// Copy the payload so the frame does not alias the connection buffer
	val := make([]byte, n)
	copy(val, buf[next:next+n])

	if prefix == '!' {
		return BulkError(val), next + n + 2, nil
	}
	return BulkString(val), next + n + 2, nil
}

// decodeAggregate parses an array ('*'), map ('%') or set ('~'). Children
// are decoded in order; if any child is incomplete the whole aggregate is
// incomplete and nothing is consumed.
func (d *Decoder) decodeAggregate(buf []byte, pos, depth int, prefix byte) (Frame, int, error) {
	count, next, err := readLength(buf, pos)
	if err != nil {
		return nil, 0, err
	}

	// Null sentinel, only legal for arrays
	if count == -1 {
		if prefix != '*' {
			return nil, 0, protoErrf("negative element count")
		}
		return Array(nil), next, nil
	}
	if count < 0 {
		return nil, 0, protoErrf("negative element count %d", count)
	}
	if count > int64(d.MaxElements) {
		return nil, 0, protoErrf("element count %d exceeds limit %d", count, d.MaxElements)
	}
	if depth >= d.MaxDepth {
		return nil, 0, protoErrf("frame exceeds maximum nesting depth %d", d.MaxDepth)
	}

	n := int(count)
	if prefix == '%' {
		entries := make(Map, 0, n)
		for i := 0; i < n; i++ {
			key, keyNext, err := d.decode(buf, next, depth+1)
			if err != nil {
				return nil, 0, err
			}
			val, valNext, err := d.decode(buf, keyNext, depth+1)
			if err != nil {
				return nil, 0, err
			}
			entries = append(entries, MapEntry{Key: key, Value: val})
			next = valNext
		}
		return entries, next, nil
	}

	items := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		item, itemNext, err := d.decode(buf, next, depth+1)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		next = itemNext
	}
	if prefix == '~' {
		return Set(items), next, nil
	}
	return Array(items), next, nil
}

// --------------------------------------------------------------------------
// Line Helpers
// --------------------------------------------------------------------------

// readLine returns the bytes between pos and the next CRLF together with
// the position after the terminator. A missing terminator is ErrIncomplete,
// a lone LF or an embedded CR is a ProtocolError.
func readLine(buf []byte, pos int) ([]byte, int, error) {
	idx := bytes.IndexByte(buf[pos:], '\n')
	if idx == -1 {
		// Make sure what we have so far can still become a valid line
		if i := bytes.IndexByte(buf[pos:], '\r'); i != -1 && pos+i != len(buf)-1 {
			return nil, 0, protoErrf("unexpected CR inside line")
		}
		return nil, 0, ErrIncomplete
	}
	if idx == 0 || buf[pos+idx-1] != '\r' {
		return nil, 0, protoErrf("line not CRLF terminated")
	}
	line := buf[pos : pos+idx-1]
	if bytes.IndexByte(line, '\r') != -1 {
		return nil, 0, protoErrf("unexpected CR inside line")
	}
	return line, pos + idx + 1, nil
}

// readLength parses the decimal length line of a bulk or aggregate frame.
// Anything non-numeric is a ProtocolError, never Incomplete: incomplete
// means "well-formed so far but truncated", not "garbage".
func readLength(buf []byte, pos int) (int64, int, error) {
	line, next, err := readLine(buf, pos)
	if err != nil {
		return 0, 0, err
	}
	if len(line) == 0 {
		return 0, 0, protoErrf("empty length")
	}
	n, perr := strconv.ParseInt(string(line), 10, 64)
	if perr != nil {
		return 0, 0, protoErrf("invalid length %q", line)
	}
	return n, next, nil
}
