package command

import (
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

func init() {
	register("ping", 1, false, pingCmd)
	register("echo", 2, true, echoCmd)
	register("del", 2, false, delCmd)
	register("exists", 2, false, existsCmd)
	register("type", 2, true, typeCmd)
}

// PING [message]
func pingCmd(s *store.Store, args [][]byte) resp.Frame {
	switch len(args) {
	case 0:
		return resp.SimpleString("PONG")
	case 1:
		return resp.BulkString(args[0])
	default:
		return arityError("ping")
	}
}

// ECHO message
func echoCmd(s *store.Store, args [][]byte) resp.Frame {
	return resp.BulkString(args[0])
}

// DEL key [key ...]
func delCmd(s *store.Store, args [][]byte) resp.Frame {
	keys := make([]string, 0, len(args))
	for _, k := range args {
		keys = append(keys, string(k))
	}
	return resp.Integer(s.Delete(keys...))
}

// EXISTS key [key ...]
func existsCmd(s *store.Store, args [][]byte) resp.Frame {
	keys := make([]string, 0, len(args))
	for _, k := range args {
		keys = append(keys, string(k))
	}
	return resp.Integer(s.Exists(keys...))
}

// TYPE key
func typeCmd(s *store.Store, args [][]byte) resp.Frame {
	return resp.SimpleString(s.Type(string(args[0])).String())
}
