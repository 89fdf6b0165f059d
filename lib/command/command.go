package command

import (
	"errors"
	"strings"

	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

// replyWrongType matches the redis wording byte for byte so existing
// clients can pattern-match on the WRONGTYPE prefix.
const replyWrongType = "WRONGTYPE Operation against a key holding the wrong kind of value"

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Handler executes one command against the store. args are the positional
// arguments after the command name, as raw byte sequences; the engine makes
// no text-encoding assumption beyond what a command itself needs. The
// returned frame is the complete reply, including error replies.
type Handler func(s *store.Store, args [][]byte) resp.Frame

// spec is one registry entry: the arity contract plus the handler.
type spec struct {
	name    string
	arity   int  // required element count, including the command name
	exact   bool // arity is exact; otherwise a minimum
	handler Handler
}

// registry maps the lower-case command name to its spec. New commands slot
// in via register without touching the dispatch core.
var registry = map[string]*spec{}

// register adds a command to the registry. It is called from the init
// functions of the per-family files and panics on duplicate names, since
// that is a programming error caught at startup.
func register(name string, arity int, exact bool, handler Handler) {
	if _, ok := registry[name]; ok {
		panic("command: duplicate registration of " + name)
	}
	registry[name] = &spec{
		name:    name,
		arity:   arity,
		exact:   exact,
		handler: handler,
	}
}

// --------------------------------------------------------------------------
// Dispatch
// --------------------------------------------------------------------------

// Dispatch parses a decoded request frame into a command plus arguments,
// validates the arity contract and executes the command against the store.
// Every failure mode produces an error reply frame; Dispatch never returns
// a Go error and never panics on malformed requests, so a bad request is
// non-fatal to the connection.
func Dispatch(s *store.Store, req resp.Frame) resp.Frame {
	arr, ok := req.(resp.Array)
	if !ok || len(arr) == 0 {
		return resp.SimpleError("ERR invalid request: expected non-empty array of bulk strings")
	}

	args := make([][]byte, len(arr))
	for i, f := range arr {
		bulk, ok := f.(resp.BulkString)
		if !ok || bulk == nil {
			return resp.SimpleError("ERR invalid request: expected non-empty array of bulk strings")
		}
		args[i] = bulk
	}

	name := strings.ToLower(string(args[0]))
	cmd, ok := registry[name]
	if !ok {
		return resp.Errorf("ERR unknown command '%s'", name)
	}

	if cmd.exact && len(args) != cmd.arity || !cmd.exact && len(args) < cmd.arity {
		return arityError(name)
	}

	return cmd.handler(s, args[1:])
}

// --------------------------------------------------------------------------
// Shared Reply Helpers
// --------------------------------------------------------------------------

// arityError builds the standard redis arity error reply.
func arityError(name string) resp.Frame {
	return resp.Errorf("ERR wrong number of arguments for '%s' command", name)
}

// storeErr maps a store error to its reply frame. Wrong-type failures get
// the redis WRONGTYPE wording, anything else is reported as a generic ERR.
func storeErr(err error) resp.Frame {
	var se *store.Error
	if errors.As(err, &se) && se.Code == store.RetCWrongType {
		return resp.SimpleError(replyWrongType)
	}
	return resp.Errorf("ERR %s", err)
}
