package command

import (
	"strconv"

	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

func init() {
	register("lpush", 3, false, pushCmd((*store.Store).LPush))
	register("rpush", 3, false, pushCmd((*store.Store).RPush))
	register("lpop", 2, true, popCmd((*store.Store).LPop))
	register("rpop", 2, true, popCmd((*store.Store).RPop))
	register("llen", 2, true, lLenCmd)
	register("lrange", 4, true, lRangeCmd)
}

// pushCmd builds the handler for LPUSH and RPUSH, which differ only in the
// store method they call.
func pushCmd(push func(s *store.Store, key string, elems ...[]byte) (int, error)) Handler {
	return func(s *store.Store, args [][]byte) resp.Frame {
		length, err := push(s, string(args[0]), args[1:]...)
		if err != nil {
			return storeErr(err)
		}
		return resp.Integer(length)
	}
}

// popCmd builds the handler for LPOP and RPOP.
func popCmd(pop func(s *store.Store, key string) ([]byte, bool, error)) Handler {
	return func(s *store.Store, args [][]byte) resp.Frame {
		val, loaded, err := pop(s, string(args[0]))
		if err != nil {
			return storeErr(err)
		}
		if !loaded {
			return resp.Null{}
		}
		return resp.BulkString(val)
	}
}

// LLEN key
func lLenCmd(s *store.Store, args [][]byte) resp.Frame {
	length, err := s.LLen(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(length)
}

// LRANGE key start stop
func lRangeCmd(s *store.Store, args [][]byte) resp.Frame {
	start, err1 := strconv.ParseInt(string(args[1]), 10, 64)
	stop, err2 := strconv.ParseInt(string(args[2]), 10, 64)
	if err1 != nil || err2 != nil {
		return resp.SimpleError("ERR value is not an integer or out of range")
	}
	elems, err := s.LRange(string(args[0]), start, stop)
	if err != nil {
		return storeErr(err)
	}
	reply := make(resp.Array, 0, len(elems))
	for _, e := range elems {
		reply = append(reply, resp.BulkString(e))
	}
	return reply
}
