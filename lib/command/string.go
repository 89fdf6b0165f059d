package command

import (
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

func init() {
	register("get", 2, true, getCmd)
	register("set", 3, true, setCmd)
	register("strlen", 2, true, strLenCmd)
}

// GET key
func getCmd(s *store.Store, args [][]byte) resp.Frame {
	val, loaded, err := s.GetString(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	if !loaded {
		return resp.Null{}
	}
	return resp.BulkString(val)
}

// SET key value
func setCmd(s *store.Store, args [][]byte) resp.Frame {
	s.SetString(string(args[0]), args[1])
	return resp.OK
}

// STRLEN key
func strLenCmd(s *store.Store, args [][]byte) resp.Frame {
	length, err := s.StrLen(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(length)
}
