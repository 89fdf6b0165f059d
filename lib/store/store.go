package store

import (
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Value Type (tagged union)
// --------------------------------------------------------------------------

// value is the tagged union stored per key. Exactly one payload field is
// populated, selected by typ. Byte slices held by a value are immutable by
// convention: mutations replace slices, they never write into them, so a
// slice handed out during one atomic section stays valid afterwards.
type value struct {
	typ  ValueType
	str  []byte
	hash *hashValue
	list [][]byte
	set  map[string]struct{}
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the server's in-memory key to value mapping, shared by all
// connection handlers.
//
// Thread-safety: every exported operation is atomic with respect to other
// operations on the same key; the underlying xsync.MapOf serializes the
// Compute callback per entry. Distinct keys do not block each other. The
// callbacks never perform IO or block, so no connection can observe a
// half-applied operation.
type Store struct {
	m *xsync.MapOf[string, *value]
}

// New creates an empty store. Each store is fully independent, so tests can
// instantiate as many as they need.
func New() *Store {
	return &Store{
		m: xsync.NewMapOf[string, *value](),
	}
}

// view runs fn under the per-key lock without creating an absent key.
func (s *Store) view(key string, fn func(v *value, ok bool)) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		fn(old, loaded)
		if !loaded {
			return nil, true // do not create the key
		}
		return old, false
	})
}

// --------------------------------------------------------------------------
// Generic Operations
// --------------------------------------------------------------------------

// Type returns the type of the value stored at key, TypeNone if absent.
func (s *Store) Type(key string) ValueType {
	typ := TypeNone
	s.view(key, func(v *value, ok bool) {
		if ok {
			typ = v.typ
		}
	})
	return typ
}

// Delete removes the given keys and returns how many of them existed.
func (s *Store) Delete(keys ...string) int {
	removed := 0
	for _, key := range keys {
		s.m.Compute(key, func(_ *value, loaded bool) (*value, bool) {
			if loaded {
				removed++
			}
			return nil, true
		})
	}
	return removed
}

// Exists returns how many of the given keys exist. A key passed twice is
// counted twice.
func (s *Store) Exists(keys ...string) int {
	found := 0
	for _, key := range keys {
		if _, ok := s.m.Load(key); ok {
			found++
		}
	}
	return found
}

// Size returns the number of keys currently stored.
func (s *Store) Size() int {
	return s.m.Size()
}

// --------------------------------------------------------------------------
// String Operations
// --------------------------------------------------------------------------

// SetString inserts or overwrites key as a string value. An existing value
// of any type is replaced, matching the redis SET contract.
func (s *Store) SetString(key string, val []byte) {
	s.m.Compute(key, func(_ *value, _ bool) (*value, bool) {
		return &value{typ: TypeString, str: val}, false
	})
}

// GetString returns the string value for a key. The boolean return value
// indicates whether the key exists.
func (s *Store) GetString(key string) (val []byte, loaded bool, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeString {
			err = errWrongType()
			return
		}
		val, loaded = v.str, true
	})
	return val, loaded, err
}

// StrLen returns the length of the string value for a key, 0 if absent.
func (s *Store) StrLen(key string) (length int, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeString {
			err = errWrongType()
			return
		}
		length = len(v.str)
	})
	return length, err
}

// --------------------------------------------------------------------------
// Hash Operations
// --------------------------------------------------------------------------

// HSet inserts or overwrites a field in the hash at key, creating the hash
// if the key is absent. It returns how many of the given fields were newly
// created (an overwrite counts as 0).
func (s *Store) HSet(key string, entries ...HashEntry) (created int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if loaded && old.typ != TypeHash {
			err = errWrongType()
			return old, false
		}
		v := old
		if !loaded {
			v = &value{typ: TypeHash, hash: newHashValue()}
		}
		for _, e := range entries {
			if v.hash.set(e.Field, e.Value) {
				created++
			}
		}
		return v, v.hash.len() == 0
	})
	return created, err
}

// HGet reads one field from the hash at key. The boolean return value
// indicates whether the key and field exist.
func (s *Store) HGet(key, field string) (val []byte, loaded bool, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeHash {
			err = errWrongType()
			return
		}
		val, loaded = v.hash.get(field)
	})
	return val, loaded, err
}

// HGetAll returns all field-value pairs of the hash at key in insertion
// order. An absent key yields an empty result, not an error.
func (s *Store) HGetAll(key string) (entries []HashEntry, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeHash {
			err = errWrongType()
			return
		}
		entries = v.hash.all()
	})
	return entries, err
}

// HDel removes the given fields and returns how many existed. The key
// itself is removed once its last field is gone.
func (s *Store) HDel(key string, fields ...string) (removed int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if !loaded {
			return nil, true
		}
		if old.typ != TypeHash {
			err = errWrongType()
			return old, false
		}
		for _, field := range fields {
			if old.hash.del(field) {
				removed++
			}
		}
		return old, old.hash.len() == 0
	})
	return removed, err
}

// HExists reports whether the hash at key contains the given field.
func (s *Store) HExists(key, field string) (exists bool, err error) {
	_, exists, err = s.HGet(key, field)
	return exists, err
}

// HLen returns the number of fields in the hash at key, 0 if absent.
func (s *Store) HLen(key string) (length int, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeHash {
			err = errWrongType()
			return
		}
		length = v.hash.len()
	})
	return length, err
}

// --------------------------------------------------------------------------
// List Operations
// --------------------------------------------------------------------------

// LPush prepends elements to the list at key, creating it if absent.
// Elements are inserted one by one, so LPush(k, a, b) yields [b, a, ...].
// It returns the length of the list after the operation.
func (s *Store) LPush(key string, elems ...[]byte) (length int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if loaded && old.typ != TypeList {
			err = errWrongType()
			return old, false
		}
		v := old
		if !loaded {
			v = &value{typ: TypeList}
		}
		list := make([][]byte, 0, len(v.list)+len(elems))
		for i := len(elems) - 1; i >= 0; i-- {
			list = append(list, elems[i])
		}
		v.list = append(list, v.list...)
		length = len(v.list)
		return v, length == 0
	})
	return length, err
}

// RPush appends elements to the list at key, creating it if absent.
// It returns the length of the list after the operation.
func (s *Store) RPush(key string, elems ...[]byte) (length int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if loaded && old.typ != TypeList {
			err = errWrongType()
			return old, false
		}
		v := old
		if !loaded {
			v = &value{typ: TypeList}
		}
		list := make([][]byte, 0, len(v.list)+len(elems))
		list = append(list, v.list...)
		v.list = append(list, elems...)
		length = len(v.list)
		return v, length == 0
	})
	return length, err
}

// LPop removes and returns the first element of the list at key. The
// boolean return value indicates whether an element was popped. The key is
// removed once the list empties.
func (s *Store) LPop(key string) (val []byte, loaded bool, err error) {
	s.m.Compute(key, func(old *value, ok bool) (*value, bool) {
		if !ok {
			return nil, true
		}
		if old.typ != TypeList {
			err = errWrongType()
			return old, false
		}
		val, loaded = old.list[0], true
		old.list = old.list[1:]
		return old, len(old.list) == 0
	})
	return val, loaded, err
}

// RPop removes and returns the last element of the list at key. The
// boolean return value indicates whether an element was popped. The key is
// removed once the list empties.
func (s *Store) RPop(key string) (val []byte, loaded bool, err error) {
	s.m.Compute(key, func(old *value, ok bool) (*value, bool) {
		if !ok {
			return nil, true
		}
		if old.typ != TypeList {
			err = errWrongType()
			return old, false
		}
		val, loaded = old.list[len(old.list)-1], true
		old.list = old.list[:len(old.list)-1]
		return old, len(old.list) == 0
	})
	return val, loaded, err
}

// LLen returns the length of the list at key, 0 if absent.
func (s *Store) LLen(key string) (length int, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeList {
			err = errWrongType()
			return
		}
		length = len(v.list)
	})
	return length, err
}

// LRange returns the elements between start and stop (inclusive), with
// negative indices counting from the end as in redis. Out-of-range requests
// yield an empty result, not an error.
func (s *Store) LRange(key string, start, stop int64) (elems [][]byte, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeList {
			err = errWrongType()
			return
		}
		n := int64(len(v.list))
		if start < 0 {
			start += n
		}
		if stop < 0 {
			stop += n
		}
		if start < 0 {
			start = 0
		}
		if stop >= n {
			stop = n - 1
		}
		if start > stop || start >= n {
			return
		}
		elems = make([][]byte, 0, stop-start+1)
		elems = append(elems, v.list[start:stop+1]...)
	})
	return elems, err
}

// --------------------------------------------------------------------------
// Set Operations
// --------------------------------------------------------------------------

// SAdd inserts members into the set at key, creating it if absent. It
// returns how many members were newly added.
func (s *Store) SAdd(key string, members ...string) (added int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if loaded && old.typ != TypeSet {
			err = errWrongType()
			return old, false
		}
		v := old
		if !loaded {
			v = &value{typ: TypeSet, set: make(map[string]struct{})}
		}
		for _, m := range members {
			if _, exists := v.set[m]; !exists {
				v.set[m] = struct{}{}
				added++
			}
		}
		return v, len(v.set) == 0
	})
	return added, err
}

// SRem removes members from the set at key and returns how many were
// removed. The key itself is removed once its last member is gone.
func (s *Store) SRem(key string, members ...string) (removed int, err error) {
	s.m.Compute(key, func(old *value, loaded bool) (*value, bool) {
		if !loaded {
			return nil, true
		}
		if old.typ != TypeSet {
			err = errWrongType()
			return old, false
		}
		for _, m := range members {
			if _, exists := old.set[m]; exists {
				delete(old.set, m)
				removed++
			}
		}
		return old, len(old.set) == 0
	})
	return removed, err
}

// SCard returns the number of members in the set at key, 0 if absent.
func (s *Store) SCard(key string) (card int, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeSet {
			err = errWrongType()
			return
		}
		card = len(v.set)
	})
	return card, err
}

// SIsMember reports whether member is in the set at key.
func (s *Store) SIsMember(key, member string) (isMember bool, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeSet {
			err = errWrongType()
			return
		}
		_, isMember = v.set[member]
	})
	return isMember, err
}

// SMembers returns all members of the set at key. Members are sorted so
// repeated calls produce a stable reply; redis itself leaves the order
// unspecified.
func (s *Store) SMembers(key string) (members []string, err error) {
	s.view(key, func(v *value, ok bool) {
		if !ok {
			return
		}
		if v.typ != TypeSet {
			err = errWrongType()
			return
		}
		members = make([]string, 0, len(v.set))
		for m := range v.set {
			members = append(members, m)
		}
	})
	sort.Strings(members)
	return members, err
}
