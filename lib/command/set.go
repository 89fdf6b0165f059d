package command

import (
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/lib/store"
)

func init() {
	register("sadd", 3, false, sAddCmd)
	register("srem", 3, false, sRemCmd)
	register("scard", 2, true, sCardCmd)
	register("sismember", 3, true, sIsMemberCmd)
	register("smembers", 2, true, sMembersCmd)
}

// SADD key member [member ...]
func sAddCmd(s *store.Store, args [][]byte) resp.Frame {
	added, err := s.SAdd(string(args[0]), toMembers(args[1:])...)
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(added)
}

// SREM key member [member ...]
func sRemCmd(s *store.Store, args [][]byte) resp.Frame {
	removed, err := s.SRem(string(args[0]), toMembers(args[1:])...)
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(removed)
}

// SCARD key
func sCardCmd(s *store.Store, args [][]byte) resp.Frame {
	card, err := s.SCard(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	return resp.Integer(card)
}

// SISMEMBER key member
func sIsMemberCmd(s *store.Store, args [][]byte) resp.Frame {
	isMember, err := s.SIsMember(string(args[0]), string(args[1]))
	if err != nil {
		return storeErr(err)
	}
	if isMember {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// SMEMBERS key
//
// Replies with a native RESP3 set frame.
func sMembersCmd(s *store.Store, args [][]byte) resp.Frame {
	members, err := s.SMembers(string(args[0]))
	if err != nil {
		return storeErr(err)
	}
	reply := make(resp.Set, 0, len(members))
	for _, m := range members {
		reply = append(reply, resp.BulkString(m))
	}
	return reply
}

func toMembers(args [][]byte) []string {
	members := make([]string, 0, len(args))
	for _, m := range args {
		members = append(members, string(m))
	}
	return members
}
