package command

import (
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

func init() {
	register("hset", 4, false, hSetCmd)
	register("hget", 3, true, hGetCmd)
	register("hgetall", 2, true, hGetAllCmd)
	register("hdel", 3, false, hDelCmd)
	register("hexists", 3, true, hExistsCmd)
	register("hlen", 2, true, hLenCmd)
}

// HSET key field value [field value ...]
func hSetCmd(s *store.Store, args [][]byte) resp.Frame {
	if (len(args)-1)%2 != 0 {
		return arityError("hset")
	}
	entries := make([]store.HashEntry, 0, (len(args)-1)/2)
	for i := 1; i < len(args); i += 2 {
		entries = append(entries, store.HashEntry{
			Field: string(args[i]),
			Value: args[i+1],
		})
	}
	created, err := s.HSet(string(args[0]), entries...)
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(created)
}

// HGET key field
func hGetCmd(s *store.Store, args [][]byte) resp.Frame {
	val, loaded, err := s.HGet(string(args[0]), string(args[1]))
	if err != nil {
		return storeErr(err)
	}
	if !loaded {
		return resp.Null{}
	}
	return resp.BulkString(val)
}

// HGETALL key
//
// Replies with a native RESP3 map in field insertion order. An absent key
// yields an empty map.
func hGetAllCmd(s *store.Store, args [][]byte) resp.Frame {
	entries, err := s.HGetAll(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	reply := make(resp.Map, 0, len(entries))
	for _, e := range entries {
		reply = append(reply, resp.MapEntry{
			Key:   resp.BulkString(e.Field),
			Value: resp.BulkString(e.Value),
		})
	}
	return reply
}

// HDEL key field [field ...]
func hDelCmd(s *store.Store, args [][]byte) resp.Frame {
	fields := make([]string, 0, len(args)-1)
	for _, f := range args[1:] {
		fields = append(fields, string(f))
	}
	removed, err := s.HDel(string(args[0]), fields...)
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(removed)
}

// HEXISTS key field
func hExistsCmd(s *store.Store, args [][]byte) resp.Frame {
	exists, err := s.HExists(string(args[0]), string(args[1]))
	if err != nil {
		return storeErr(err)
	}
	if exists {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// HLEN key
func hLenCmd(s *store.Store, args [][]byte) resp.Frame {
	length, err := s.HLen(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(length)
}
