package resp

import (
	"math"
	"strconv"
)

// encodeBufCap is the initial capacity for encoded frames. Most replies are
// far smaller; large bulk payloads grow the slice as needed.
const encodeBufCap = 64

// Encode serializes a frame into its exact wire representation. Encoding is
// total and deterministic: every legal frame has exactly one byte form and
// Decode(Encode(f)) yields f again.
func Encode(f Frame) []byte {
	return f.appendRESP(make([]byte, 0, encodeBufCap))
}

// AppendEncode appends the wire representation of f to dst and returns the
// extended slice. This avoids an allocation when batching replies.
func AppendEncode(dst []byte, f Frame) []byte {
	return f.appendRESP(dst)
}

// --------------------------------------------------------------------------
// Simple Types
// --------------------------------------------------------------------------

func (s SimpleString) appendRESP(dst []byte) []byte {
	dst = append(dst, '+')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

func (e SimpleError) appendRESP(dst []byte) []byte {
	dst = append(dst, '-')
	dst = append(dst, e...)
	return append(dst, '\r', '\n')
}

// Integers carry an explicit sign, ":+42\r\n" / ":-42\r\n".
func (i Integer) appendRESP(dst []byte) []byte {
	dst = append(dst, ':')
	if i >= 0 {
		dst = append(dst, '+')
	}
	dst = strconv.AppendInt(dst, int64(i), 10)
	return append(dst, '\r', '\n')
}

// Doubles carry an explicit sign as well and switch to scientific notation
// outside [1e-8, 1e+8] (zero stays decimal). Both forms re-parse exactly.
func (d Double) appendRESP(dst []byte) []byte {
	dst = append(dst, ',')
	f := float64(d)
	switch {
	case math.IsNaN(f):
		return append(dst, 'n', 'a', 'n', '\r', '\n')
	case math.IsInf(f, 1):
		return append(dst, '+', 'i', 'n', 'f', '\r', '\n')
	case math.IsInf(f, -1):
		return append(dst, '-', 'i', 'n', 'f', '\r', '\n')
	}
	if !math.Signbit(f) {
		dst = append(dst, '+')
	}
	if abs := math.Abs(f); abs != 0 && (abs > 1e+8 || abs < 1e-8) {
		dst = strconv.AppendFloat(dst, f, 'e', -1, 64)
	} else {
		dst = strconv.AppendFloat(dst, f, 'f', -1, 64)
	}
	return append(dst, '\r', '\n')
}

func (b Boolean) appendRESP(dst []byte) []byte {
	if b {
		return append(dst, '#', 't', '\r', '\n')
	}
	return append(dst, '#', 'f', '\r', '\n')
}

func (Null) appendRESP(dst []byte) []byte {
	return append(dst, '_', '\r', '\n')
}

// --------------------------------------------------------------------------
// Bulk Types
// --------------------------------------------------------------------------

func (b BulkString) appendRESP(dst []byte) []byte {
	if b == nil {
		return append(dst, '$', '-', '1', '\r', '\n')
	}
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

func (b BulkError) appendRESP(dst []byte) []byte {
	dst = append(dst, '!')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

// --------------------------------------------------------------------------
// Aggregate Types
// --------------------------------------------------------------------------

func (a Array) appendRESP(dst []byte) []byte {
	if a == nil {
		return append(dst, '*', '-', '1', '\r', '\n')
	}
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(a)), 10)
	dst = append(dst, '\r', '\n')
	for _, item := range a {
		dst = item.appendRESP(dst)
	}
	return dst
}

func (m Map) appendRESP(dst []byte) []byte {
	dst = append(dst, '%')
	dst = strconv.AppendInt(dst, int64(len(m)), 10)
	dst = append(dst, '\r', '\n')
	for _, entry := range m {
		dst = entry.Key.appendRESP(dst)
		dst = entry.Value.appendRESP(dst)
	}
	return dst
}

func (s Set) appendRESP(dst []byte) []byte {
	dst = append(dst, '~')
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, '\r', '\n')
	for _, item := range s {
		dst = item.appendRESP(dst)
	}
	return dst
}
