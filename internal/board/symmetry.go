package board

// symmetryTable[size][k][i] is the source cell for destination cell i under
// the k-th element of the dihedral group (rotations and reflections).
var symmetryTable [5][8][]int

func init() {
	for n := 2; n <= 4; n++ {
		maps := [8]func(r, c int) (int, int){
			func(r, c int) (int, int) { return r, c },
			func(r, c int) (int, int) { return n - 1 - c, r },
			func(r, c int) (int, int) { return n - 1 - r, n - 1 - c },
			func(r, c int) (int, int) { return c, n - 1 - r },
			func(r, c int) (int, int) { return r, n - 1 - c },
			func(r, c int) (int, int) { return n - 1 - r, c },
			func(r, c int) (int, int) { return c, r },
			func(r, c int) (int, int) { return n - 1 - c, n - 1 - r },
		}
		for k, m := range maps {
			perm := make([]int, n*n)
			for r := 0; r < n; r++ {
				for c := 0; c < n; c++ {
					sr, sc := m(r, c)
					perm[r*n+c] = sr*n + sc
				}
			}
			symmetryTable[n][k] = perm
		}
	}
}

// Symmetries returns the eight boards equivalent to s under rotation and
// reflection, starting with s itself. Some may coincide.
func (s State) Symmetries() [8]State {
	var out [8]State
	for k, perm := range symmetryTable[s.size] {
		t := Empty(s.Size())
		for i, src := range perm {
			if v := s.At(src); v != 0 {
				t = t.with(i, v)
			}
		}
		out[k] = t
	}
	return out
}

// Canonicalize returns the symmetric equivalent with the smallest packed key.
func (s State) Canonicalize() State {
	best := s
	for _, t := range s.Symmetries() {
		if t.nybbles < best.nybbles {
			best = t
		}
	}
	return best
}

// IsCanonical reports whether s is already in canonical form.
func (s State) IsCanonical() bool {
	return s.Canonicalize() == s
}
