package trace

import "github.com/dolthub/maphash"

// liveSet is a small open-addressing table mapping live node ids to the
// queue holding them. The recorder uses it to police id reuse while a
// trace is being built.
//
// Deleted slots leave tombstones behind so probe chains stay intact; the
// table rehashes when residents and tombstones together reach the load
// limit.
type liveSet struct {
	hash maphash.Hasher[uint32]

	ctrl []int8
	keys []uint32
	vals []uint32

	resident uint32
	dead     uint32
	limit    uint32
}

const (
	slotEmpty     int8 = 0
	slotFull      int8 = 1
	slotTombstone int8 = -1
)

const minTableSize = 16

func newLiveSet(sz uint32) *liveSet {
	n := uint32(minTableSize)
	for n < sz*2 {
		n *= 2
	}

	return &liveSet{
		hash:  maphash.NewHasher[uint32](),
		ctrl:  make([]int8, n),
		keys:  make([]uint32, n),
		vals:  make([]uint32, n),
		limit: n * 4 / 5,
	}
}

func (s *liveSet) mask() uint32 { return uint32(len(s.ctrl)) - 1 }

// Len returns the number of live entries.
func (s *liveSet) Len() uint32 { return s.resident }

// Get returns the value stored for key.
func (s *liveSet) Get(key uint32) (uint32, bool) {
	for i := uint32(s.hash.Hash(key)) & s.mask(); ; i = (i + 1) & s.mask() {
		switch s.ctrl[i] {
		case slotEmpty:
			return 0, false
		case slotFull:
			if s.keys[i] == key {
				return s.vals[i], true
			}
		}
	}
}

// Put stores value under key, replacing any previous entry.
func (s *liveSet) Put(key, value uint32) {
	if s.resident+s.dead >= s.limit {
		s.rehash()
	}

	first := int32(-1)
	for i := uint32(s.hash.Hash(key)) & s.mask(); ; i = (i + 1) & s.mask() {
		switch s.ctrl[i] {
		case slotEmpty:
			if first >= 0 {
				i = uint32(first)
				s.dead--
			}
			s.ctrl[i] = slotFull
			s.keys[i] = key
			s.vals[i] = value
			s.resident++
			return
		case slotTombstone:
			if first < 0 {
				first = int32(i)
			}
		case slotFull:
			if s.keys[i] == key {
				s.vals[i] = value
				return
			}
		}
	}
}

// Delete removes key, reporting whether it was present.
func (s *liveSet) Delete(key uint32) bool {
	for i := uint32(s.hash.Hash(key)) & s.mask(); ; i = (i + 1) & s.mask() {
		switch s.ctrl[i] {
		case slotEmpty:
			return false
		case slotFull:
			if s.keys[i] == key {
				s.ctrl[i] = slotTombstone
				s.resident--
				s.dead++
				return true
			}
		}
	}
}

// Range calls f for every live entry until f returns false.
func (s *liveSet) Range(f func(key, value uint32) bool) {
	for i, c := range s.ctrl {
		if c == slotFull && !f(s.keys[i], s.vals[i]) {
			return
		}
	}
}

func (s *liveSet) rehash() {
	old := *s

	n := uint32(len(s.ctrl))
	if old.resident*2 >= old.limit {
		n *= 2
	}

	s.ctrl = make([]int8, n)
	s.keys = make([]uint32, n)
	s.vals = make([]uint32, n)
	s.resident = 0
	s.dead = 0
	s.limit = n * 4 / 5

	for i, c := range old.ctrl {
		if c == slotFull {
			s.Put(old.keys[i], old.vals[i])
		}
	}
}
