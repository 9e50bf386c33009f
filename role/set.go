package role

import "math/bits"

// Set is a growable bitset of role bits.
type Set struct {
	words []uint64
}

// Add sets bit.
func (s *Set) Add(bit int) {
	if bit < 0 {
		return
	}
	w := bit / 64
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(bit) % 64)
}

// Has reports whether bit is set.
func (s Set) Has(bit int) bool {
	if bit < 0 {
		return false
	}
	w := bit / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(bit)%64)) != 0
}

// Union adds every bit of other to s.
func (s *Set) Union(other Set) {
	for len(s.words) < len(other.words) {
		s.words = append(s.words, 0)
	}
	for i, w := range other.words {
		s.words[i] |= w
	}
}

// Intersects reports whether s and other share a bit.
func (s Set) Intersects(other Set) bool {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Empty reports whether no bit is set.
func (s Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of set bits.
func (s Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bits returns the set bits in ascending order.
func (s Set) Bits() []int {
	out := make([]int, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}
