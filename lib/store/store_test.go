package store

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// requireWrongType fails the test unless err is a wrong-type store error
func requireWrongType(t *testing.T, err error) {
	t.Helper()

	var storeErr *Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected a store error, got %v", err)
	}
	if storeErr.Code != RetCWrongType {
		t.Fatalf("expected RetCWrongType, got %v", storeErr.Code)
	}
}

// --------------------------------------------------------------------------
// Generic operations
// --------------------------------------------------------------------------

func TestTypeAndExists(t *testing.T) {
	s := New()

	if typ := s.Type("missing"); typ != TypeNone {
		t.Errorf("expected TypeNone for missing key, got %v", typ)
	}

	s.SetString("str", []byte("v"))
	if _, err := s.HSet("hash", HashEntry{Field: "f", Value: []byte("v")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.RPush("list", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.SAdd("set", "m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]ValueType{
		"str":  TypeString,
		"hash": TypeHash,
		"list": TypeList,
		"set":  TypeSet,
	}
	for key, want := range tests {
		if typ := s.Type(key); typ != want {
			t.Errorf("key %s: expected %v, got %v", key, want, typ)
		}
	}

	if n := s.Exists("str", "missing", "hash", "str"); n != 3 {
		t.Errorf("expected Exists to count 3 (duplicates included), got %d", n)
	}
	if n := s.Size(); n != 4 {
		t.Errorf("expected 4 keys, got %d", n)
	}
}

func TestDelete(t *testing.T) {
	s := New()

	s.SetString("a", []byte("1"))
	s.SetString("b", []byte("2"))

	if n := s.Delete("a", "missing", "b"); n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	if n := s.Size(); n != 0 {
		t.Errorf("expected empty store, got %d keys", n)
	}
	if typ := s.Type("a"); typ != TypeNone {
		t.Errorf("expected TypeNone after delete, got %v", typ)
	}
}

// --------------------------------------------------------------------------
// String operations
// --------------------------------------------------------------------------

func TestSetGetString(t *testing.T) {
	s := New()

	val, loaded, err := s.GetString("missing")
	if err != nil || loaded || val != nil {
		t.Errorf("expected (nil, false, nil) for missing key, got (%q, %v, %v)", val, loaded, err)
	}

	s.SetString("key", []byte("value1"))
	val, loaded, err = s.GetString("key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded || !bytes.Equal(val, []byte("value1")) {
		t.Errorf("expected value1, got (%q, %v)", val, loaded)
	}

	// Overwrite
	s.SetString("key", []byte("value2"))
	val, _, _ = s.GetString("key")
	if !bytes.Equal(val, []byte("value2")) {
		t.Errorf("expected value2 after overwrite, got %q", val)
	}

	n, err := s.StrLen("key")
	if err != nil || n != 6 {
		t.Errorf("expected StrLen 6, got (%d, %v)", n, err)
	}
	n, err = s.StrLen("missing")
	if err != nil || n != 0 {
		t.Errorf("expected StrLen 0 for missing key, got (%d, %v)", n, err)
	}
}

// SET replaces a value of any type, all other type-specific operations
// reject a key of the wrong type
func TestTypeIsolation(t *testing.T) {
	s := New()

	s.SetString("key", []byte("string"))

	if _, err := s.HSet("key", HashEntry{Field: "f", Value: []byte("v")}); err == nil {
		t.Error("expected HSet on a string key to fail")
	} else {
		requireWrongType(t, err)
	}
	if _, _, err := s.HGet("key", "f"); err == nil {
		t.Error("expected HGet on a string key to fail")
	} else {
		requireWrongType(t, err)
	}
	if _, err := s.LPush("key", []byte("v")); err == nil {
		t.Error("expected LPush on a string key to fail")
	} else {
		requireWrongType(t, err)
	}
	if _, err := s.SAdd("key", "m"); err == nil {
		t.Error("expected SAdd on a string key to fail")
	} else {
		requireWrongType(t, err)
	}

	// The rejected operations must not have altered the value
	val, _, err := s.GetString("key")
	if err != nil || !bytes.Equal(val, []byte("string")) {
		t.Errorf("expected original string value, got (%q, %v)", val, err)
	}

	// GetString on a hash key fails the same way
	if _, err := s.HSet("hash", HashEntry{Field: "f", Value: []byte("v")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.GetString("hash"); err == nil {
		t.Error("expected GetString on a hash key to fail")
	} else {
		requireWrongType(t, err)
	}

	// SET overwrites regardless of the existing type
	s.SetString("hash", []byte("now a string"))
	if typ := s.Type("hash"); typ != TypeString {
		t.Errorf("expected TypeString after SET over hash, got %v", typ)
	}
}

// --------------------------------------------------------------------------
// Hash operations
// --------------------------------------------------------------------------

func TestHashBasics(t *testing.T) {
	s := New()

	created, err := s.HSet("h",
		HashEntry{Field: "a", Value: []byte("1")},
		HashEntry{Field: "b", Value: []byte("2")},
	)
	if err != nil || created != 2 {
		t.Fatalf("expected 2 created, got (%d, %v)", created, err)
	}

	// Overwriting counts 0, a new field counts 1
	created, err = s.HSet("h",
		HashEntry{Field: "a", Value: []byte("changed")},
		HashEntry{Field: "c", Value: []byte("3")},
	)
	if err != nil || created != 1 {
		t.Fatalf("expected 1 created on upsert, got (%d, %v)", created, err)
	}

	val, loaded, err := s.HGet("h", "a")
	if err != nil || !loaded || !bytes.Equal(val, []byte("changed")) {
		t.Errorf("expected changed, got (%q, %v, %v)", val, loaded, err)
	}

	_, loaded, err = s.HGet("h", "missing")
	if err != nil || loaded {
		t.Errorf("expected missing field to return loaded=false, got (%v, %v)", loaded, err)
	}
	_, loaded, err = s.HGet("missing", "a")
	if err != nil || loaded {
		t.Errorf("expected missing key to return loaded=false, got (%v, %v)", loaded, err)
	}

	exists, err := s.HExists("h", "b")
	if err != nil || !exists {
		t.Errorf("expected field b to exist, got (%v, %v)", exists, err)
	}

	n, err := s.HLen("h")
	if err != nil || n != 3 {
		t.Errorf("expected HLen 3, got (%d, %v)", n, err)
	}
	n, err = s.HLen("missing")
	if err != nil || n != 0 {
		t.Errorf("expected HLen 0 for missing key, got (%d, %v)", n, err)
	}
}

// HGetAll must reflect field insertion order, with overwrites keeping the
// original position
func TestHashInsertionOrder(t *testing.T) {
	s := New()

	fields := []string{"first", "second", "third", "fourth"}
	for _, f := range fields {
		if _, err := s.HSet("h", HashEntry{Field: f, Value: []byte(f)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Overwrite a middle field, the order must not change
	if _, err := s.HSet("h", HashEntry{Field: "second", Value: []byte("updated")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := s.HGetAll("h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != len(fields) {
		t.Fatalf("expected %d entries, got %d", len(fields), len(entries))
	}
	for i, f := range fields {
		if entries[i].Field != f {
			t.Errorf("position %d: expected field %s, got %s", i, f, entries[i].Field)
		}
	}
	if !bytes.Equal(entries[1].Value, []byte("updated")) {
		t.Errorf("expected updated value for second, got %q", entries[1].Value)
	}

	// A deleted and re-added field moves to the end
	if _, err := s.HDel("h", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.HSet("h", HashEntry{Field: "first", Value: []byte("again")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ = s.HGetAll("h")
	if entries[len(entries)-1].Field != "first" {
		t.Errorf("expected re-added field at the end, got %v", entries)
	}

	entries, err = s.HGetAll("missing")
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty result for missing key, got (%v, %v)", entries, err)
	}
}

func TestHashDeleteRemovesEmptyKey(t *testing.T) {
	s := New()

	if _, err := s.HSet("h",
		HashEntry{Field: "a", Value: []byte("1")},
		HashEntry{Field: "b", Value: []byte("2")},
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := s.HDel("h", "a", "missing")
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removed, got (%d, %v)", removed, err)
	}
	if typ := s.Type("h"); typ != TypeHash {
		t.Errorf("expected key to survive while fields remain, got %v", typ)
	}

	removed, err = s.HDel("h", "b")
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removed, got (%d, %v)", removed, err)
	}
	if typ := s.Type("h"); typ != TypeNone {
		t.Errorf("expected key to vanish with its last field, got %v", typ)
	}

	// The key is free for another type now
	s.SetString("h", []byte("reborn"))
	if typ := s.Type("h"); typ != TypeString {
		t.Errorf("expected TypeString, got %v", typ)
	}

	removed, err = s.HDel("missing", "a")
	if err != nil || removed != 0 {
		t.Errorf("expected 0 removed for missing key, got (%d, %v)", removed, err)
	}
}

// --------------------------------------------------------------------------
// List operations
// --------------------------------------------------------------------------

func TestListPushPop(t *testing.T) {
	s := New()

	n, err := s.RPush("l", []byte("b"), []byte("c"))
	if err != nil || n != 2 {
		t.Fatalf("expected length 2, got (%d, %v)", n, err)
	}
	// LPush inserts one by one: LPush(a, z) yields [z, a, b, c]
	n, err = s.LPush("l", []byte("a"), []byte("z"))
	if err != nil || n != 4 {
		t.Fatalf("expected length 4, got (%d, %v)", n, err)
	}

	elems, err := s.LRange("l", 0, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]byte{[]byte("z"), []byte("a"), []byte("b"), []byte("c")}
	if !reflect.DeepEqual(elems, want) {
		t.Fatalf("expected %q, got %q", want, elems)
	}

	val, loaded, err := s.LPop("l")
	if err != nil || !loaded || !bytes.Equal(val, []byte("z")) {
		t.Errorf("expected to pop z, got (%q, %v, %v)", val, loaded, err)
	}
	val, loaded, err = s.RPop("l")
	if err != nil || !loaded || !bytes.Equal(val, []byte("c")) {
		t.Errorf("expected to pop c, got (%q, %v, %v)", val, loaded, err)
	}

	n, err = s.LLen("l")
	if err != nil || n != 2 {
		t.Errorf("expected LLen 2, got (%d, %v)", n, err)
	}

	// Popping a missing key is not an error
	_, loaded, err = s.LPop("missing")
	if err != nil || loaded {
		t.Errorf("expected loaded=false for missing key, got (%v, %v)", loaded, err)
	}
}

func TestListPopRemovesEmptyKey(t *testing.T) {
	s := New()

	if _, err := s.RPush("l", []byte("only")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, loaded, err := s.LPop("l"); err != nil || !loaded {
		t.Fatalf("expected pop to succeed, got (%v, %v)", loaded, err)
	}
	if typ := s.Type("l"); typ != TypeNone {
		t.Errorf("expected key to vanish with its last element, got %v", typ)
	}
}

func TestListRange(t *testing.T) {
	s := New()

	for i := 0; i < 5; i++ {
		if _, err := s.RPush("l", []byte(fmt.Sprintf("e%d", i))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, 2, []string{"e0", "e1", "e2"}},
		{0, -1, []string{"e0", "e1", "e2", "e3", "e4"}},
		{-2, -1, []string{"e3", "e4"}},
		{-100, 100, []string{"e0", "e1", "e2", "e3", "e4"}},
		{3, 1, nil},
		{10, 20, nil},
	}

	for _, tt := range tests {
		elems, err := s.LRange("l", tt.start, tt.stop)
		if err != nil {
			t.Fatalf("LRange(%d, %d): unexpected error: %v", tt.start, tt.stop, err)
		}
		got := make([]string, 0, len(elems))
		for _, e := range elems {
			got = append(got, string(e))
		}
		if len(got) != len(tt.want) {
			t.Errorf("LRange(%d, %d): expected %v, got %v", tt.start, tt.stop, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("LRange(%d, %d): expected %v, got %v", tt.start, tt.stop, tt.want, got)
				break
			}
		}
	}

	elems, err := s.LRange("missing", 0, -1)
	if err != nil || len(elems) != 0 {
		t.Errorf("expected empty range for missing key, got (%v, %v)", elems, err)
	}
}

// --------------------------------------------------------------------------
// Set operations
// --------------------------------------------------------------------------

func TestSetBasics(t *testing.T) {
	s := New()

	added, err := s.SAdd("s", "a", "b", "a")
	if err != nil || added != 2 {
		t.Fatalf("expected 2 added (duplicate ignored), got (%d, %v)", added, err)
	}

	card, err := s.SCard("s")
	if err != nil || card != 2 {
		t.Errorf("expected cardinality 2, got (%d, %v)", card, err)
	}

	isMember, err := s.SIsMember("s", "a")
	if err != nil || !isMember {
		t.Errorf("expected a to be a member, got (%v, %v)", isMember, err)
	}
	isMember, err = s.SIsMember("s", "missing")
	if err != nil || isMember {
		t.Errorf("expected missing member to report false, got (%v, %v)", isMember, err)
	}
	isMember, err = s.SIsMember("missing", "a")
	if err != nil || isMember {
		t.Errorf("expected missing key to report false, got (%v, %v)", isMember, err)
	}

	members, err := s.SMembers("s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(members, []string{"a", "b"}) {
		t.Errorf("expected sorted members [a b], got %v", members)
	}

	removed, err := s.SRem("s", "a", "missing")
	if err != nil || removed != 1 {
		t.Errorf("expected 1 removed, got (%d, %v)", removed, err)
	}

	// Removing the last member removes the key
	if _, err := s.SRem("s", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ := s.Type("s"); typ != TypeNone {
		t.Errorf("expected key to vanish with its last member, got %v", typ)
	}
}

// --------------------------------------------------------------------------
// Concurrency
// --------------------------------------------------------------------------

// Operations on distinct keys must not interfere
func TestConcurrentDisjointKeys(t *testing.T) {
	s := New()

	const workers = 16
	const iterations = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("worker-%d", id)
			for i := 0; i < iterations; i++ {
				val := []byte(fmt.Sprintf("%d", i))
				s.SetString(key, val)
				got, loaded, err := s.GetString(key)
				if err != nil || !loaded || !bytes.Equal(got, val) {
					t.Errorf("worker %d: expected %q, got (%q, %v, %v)", id, val, got, loaded, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n := s.Size(); n != workers {
		t.Errorf("expected %d keys, got %d", workers, n)
	}
}

// Concurrent writers on the same hash must not lose fields: per-key
// operations are atomic
func TestConcurrentSameKeyHash(t *testing.T) {
	s := New()

	const workers = 8
	const fieldsPerWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < fieldsPerWorker; i++ {
				field := fmt.Sprintf("w%d-f%d", id, i)
				if _, err := s.HSet("shared", HashEntry{Field: field, Value: []byte("v")}); err != nil {
					t.Errorf("worker %d: unexpected error: %v", id, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := s.HLen("shared")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != workers*fieldsPerWorker {
		t.Errorf("expected %d fields, got %d", workers*fieldsPerWorker, n)
	}
}

// Concurrent counters on the same key: every push must be observed by
// exactly one pop
func TestConcurrentListPushPop(t *testing.T) {
	s := New()

	const pushers = 4
	const perPusher = 100

	var wg sync.WaitGroup
	for w := 0; w < pushers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perPusher; i++ {
				if _, err := s.RPush("queue", []byte("item")); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	popped := 0
	for {
		_, loaded, err := s.LPop("queue")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !loaded {
			break
		}
		popped++
	}
	if popped != pushers*perPusher {
		t.Errorf("expected %d items, got %d", pushers*perPusher, popped)
	}
}
