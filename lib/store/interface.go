package store

import "fmt"

// --------------------------------------------------------------------------
// Value Types
// --------------------------------------------------------------------------

// ValueType identifies which kind of value a key holds. A key holds exactly
// one type for its lifetime until it is deleted; commands targeting a key of
// the wrong type fail with RetCWrongType and perform no mutation.
type ValueType uint8

const (
	TypeNone ValueType = iota // key does not exist
	TypeString
	TypeHash
	TypeList
	TypeSet
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeHash:
		return "hash"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	default:
		return "none"
	}
}

// HashEntry is one field-value pair of a hash, in insertion order.
type HashEntry struct {
	Field string
	Value []byte
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCWrongType:
		errorCode = "WrongType"
	case RetCInternalError:
		errorCode = "InternalError"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("StoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new store Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// errWrongType is returned for any operation against a key holding a value
// of a different type than the operation expects.
func errWrongType() *Error {
	return NewError(RetCWrongType, "operation against a key holding the wrong kind of value")
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCWrongType                    // 1: Key holds a value of a different type.
	RetCInternalError                // 2: Operation failed due to an internal error.
)
