// Package index keeps the secondary order indexes.
//
// A Set stores ids densely and removes by moving the last id into the freed
// slot, so iteration order is unspecified. All writes are journaled; undoing
// them restores the exact previous order.
package index

import (
	"strings"

	"github.com/mochi-xyz/market/base/journal"
)

type Set struct {
	j   *journal.Journal
	ids []uint64
	pos map[uint64]int
}

func NewSet(j *journal.Journal) *Set {
	return &Set{j: j, pos: map[uint64]int{}}
}

// Add inserts id. It returns false when id is already present.
func (s *Set) Add(id uint64) bool {
	if _, ok := s.pos[id]; ok {
		return false
	}
	s.pos[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.j.Append(func() {
		delete(s.pos, id)
		s.ids = s.ids[:len(s.ids)-1]
	})
	return true
}

// Remove deletes id in O(1). It returns false when id is absent.
func (s *Set) Remove(id uint64) bool {
	p, ok := s.pos[id]
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	moved := s.ids[last]
	s.ids[p] = moved
	s.pos[moved] = p
	s.ids = s.ids[:last]
	delete(s.pos, id)

	s.j.Append(func() {
		if p == len(s.ids) {
			s.ids = append(s.ids, id)
		} else {
			s.ids = append(s.ids, s.ids[p])
			s.pos[s.ids[p]] = len(s.ids) - 1
			s.ids[p] = id
		}
		s.pos[id] = p
	})
	return true
}

func (s *Set) Has(id uint64) bool {
	_, ok := s.pos[id]
	return ok
}

func (s *Set) Len() int {
	return len(s.ids)
}

// Ids returns a copy of the members.
func (s *Set) Ids() []uint64 {
	res := make([]uint64, len(s.ids))
	copy(res, s.ids)
	return res
}

// Keyed is a family of Sets, for example ids by seller.
type Keyed struct {
	j    *journal.Journal
	sets map[string]*Set
}

func NewKeyed(j *journal.Journal) *Keyed {
	return &Keyed{j: j, sets: map[string]*Set{}}
}

func (k *Keyed) set(key string) *Set {
	s, ok := k.sets[key]
	if !ok {
		s = NewSet(k.j)
		k.sets[key] = s
	}
	return s
}

func (k *Keyed) Add(key string, id uint64) bool {
	return k.set(key).Add(id)
}

func (k *Keyed) Remove(key string, id uint64) bool {
	if s, ok := k.sets[key]; ok {
		return s.Remove(id)
	}
	return false
}

func (k *Keyed) Has(key string, id uint64) bool {
	if s, ok := k.sets[key]; ok {
		return s.Has(id)
	}
	return false
}

func (k *Keyed) Ids(key string) []uint64 {
	if s, ok := k.sets[key]; ok {
		return s.Ids()
	}
	return []uint64{}
}

// Latest maps a key to the most recent id written for it.
type Latest struct {
	j *journal.Journal
	m map[string]uint64
}

func NewLatest(j *journal.Journal) *Latest {
	return &Latest{j: j, m: map[string]uint64{}}
}

func (l *Latest) Set(key string, id uint64) {
	prev, existed := l.m[key]
	l.m[key] = id
	l.j.Append(func() {
		if existed {
			l.m[key] = prev
		} else {
			delete(l.m, key)
		}
	})
}

func (l *Latest) Get(key string) (uint64, bool) {
	id, ok := l.m[key]
	return id, ok
}

// Key joins parts case-insensitively.
func Key(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "|"))
}
