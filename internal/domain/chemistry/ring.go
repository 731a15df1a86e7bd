package chemistry

import (
	"sort"
	"strconv"
	"strings"
)

// Ring is a cycle of a molecule's bond graph.  Rings are derived data: a
// molecule recomputes them after any structural change.
type Ring struct {
	atoms  []*Atom
	bonds  []*Bond
	parent *Molecule
}

// Atoms returns the ring atoms in cyclic order.
func (r *Ring) Atoms() []*Atom { return append([]*Atom(nil), r.atoms...) }

// Bonds returns the ring bonds.
func (r *Ring) Bonds() []*Bond { return append([]*Bond(nil), r.bonds...) }

// Size returns the number of ring atoms.
func (r *Ring) Size() int { return len(r.atoms) }

// Parent returns the molecule the ring was perceived in.
func (r *Ring) Parent() *Molecule { return r.parent }

// Centroid returns the mean position of the ring atoms.
func (r *Ring) Centroid() Point {
	points := make([]Point, len(r.atoms))
	for i, a := range r.atoms {
		points[i] = a.Position
	}
	return centroid(points)
}

// IsAromatic reports whether every ring bond carries the aromatic code.
func (r *Ring) IsAromatic() bool {
	for _, b := range r.bonds {
		if !b.IsAromatic() {
			return false
		}
	}
	return len(r.bonds) > 0
}

// Contains reports whether a is a ring atom.
func (r *Ring) Contains(a *Atom) bool {
	for _, x := range r.atoms {
		if x == a {
			return true
		}
	}
	return false
}

// Rings returns the smallest set of smallest rings of m's own bond graph:
// cycle rank many rings of minimum total size.  Nested molecules are not
// included.  The result is cached until the next
// structural mutation.
func (m *Molecule) Rings() []*Ring {
	if !m.ringsValid {
		m.rings = perceiveRings(m)
		m.ringsValid = true
	}
	return append([]*Ring(nil), m.rings...)
}

// RingsOf returns the rings containing a.
func (m *Molecule) RingsOf(a *Atom) []*Ring {
	var out []*Ring
	for _, r := range m.Rings() {
		if r.Contains(a) {
			out = append(out, r)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// SSSR perception
// ─────────────────────────────────────────────────────────────────────────────

type edge struct {
	to   int
	bond int
}

type ringCandidate struct {
	atoms []int
	bonds []int
	bits  bitset
	key   string
}

// perceiveRings finds, for every bond, the shortest cycle through it and
// then keeps the smallest candidates that are linearly independent over
// GF(2) until the cycle rank E - V + C is reached.  When those candidates
// do not span the cycle space, as on some cages, the full set of
// vertex-bond cycles is added and the selection rerun.
func perceiveRings(m *Molecule) []*Ring {
	atoms := m.Atoms()
	bonds := m.bonds
	if len(bonds) < 3 {
		return nil
	}

	index := make(map[*Atom]int, len(atoms))
	for i, a := range atoms {
		index[a] = i
	}
	adj := make([][]edge, len(atoms))
	for bi, b := range bonds {
		s, e := index[b.start], index[b.end]
		adj[s] = append(adj[s], edge{to: e, bond: bi})
		adj[e] = append(adj[e], edge{to: s, bond: bi})
	}

	rank := len(bonds) - len(atoms) + components(adj)
	if rank <= 0 {
		return nil
	}

	set := newCandidateSet()
	for bi, b := range bonds {
		s, e := index[b.start], index[b.end]
		if path := shortestPath(adj, s, e, bi); path != nil {
			set.add(newCandidate(path, bi, len(bonds)))
		}
	}
	chosen := selectRings(set.sorted(), rank)
	if len(chosen) < rank {
		for v := range adj {
			for _, cand := range vertexBondCycles(adj, v, len(bonds)) {
				set.add(cand)
			}
		}
		chosen = selectRings(set.sorted(), rank)
	}

	rings := make([]*Ring, 0, len(chosen))
	for _, cand := range chosen {
		r := &Ring{parent: m}
		for _, ai := range cand.atoms {
			r.atoms = append(r.atoms, atoms[ai])
		}
		for _, bi := range cand.bonds {
			r.bonds = append(r.bonds, bonds[bi])
		}
		rings = append(rings, r)
	}
	return rings
}

// candidateSet collects ring candidates without duplicates.
type candidateSet struct {
	seen  map[string]bool
	cands []ringCandidate
}

func newCandidateSet() *candidateSet { return &candidateSet{seen: make(map[string]bool)} }

func (c *candidateSet) add(cand ringCandidate) {
	if c.seen[cand.key] {
		return
	}
	c.seen[cand.key] = true
	c.cands = append(c.cands, cand)
}

// sorted returns the candidates smallest first, ties broken by key.
func (c *candidateSet) sorted() []ringCandidate {
	out := append([]ringCandidate(nil), c.cands...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].bonds) != len(out[j].bonds) {
			return len(out[i].bonds) < len(out[j].bonds)
		}
		return out[i].key < out[j].key
	})
	return out
}

// selectRings keeps candidates, in order, that are independent of those
// already kept, stopping at rank.
func selectRings(candidates []ringCandidate, rank int) []ringCandidate {
	var basis []bitset
	var chosen []ringCandidate
	for _, cand := range candidates {
		if len(chosen) == rank {
			break
		}
		reduced, ok := reduce(basis, cand.bits)
		if !ok {
			continue
		}
		basis = append(basis, reduced)
		chosen = append(chosen, cand)
	}
	return chosen
}

// vertexBondCycles returns, for every bond x-y off the BFS tree rooted at
// v, the cycle v..x, x-y, y..v when the two tree paths meet only at v.
// Over all v these cycles contain a minimum cycle basis.
func vertexBondCycles(adj [][]edge, v, nbonds int) []ringCandidate {
	prev := make([]pathStep, len(adj))
	reached := make([]bool, len(adj))
	reached[v] = true
	prev[v] = pathStep{atom: -1, bond: -1}
	queue := []int{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ed := range adj[cur] {
			if reached[ed.to] {
				continue
			}
			reached[ed.to] = true
			prev[ed.to] = pathStep{atom: cur, bond: ed.bond}
			queue = append(queue, ed.to)
		}
	}

	// toRoot lists x, parent(x), ..., v.
	toRoot := func(x int) []int {
		var out []int
		for cur := x; cur != -1; cur = prev[cur].atom {
			out = append(out, cur)
		}
		return out
	}

	var out []ringCandidate
	for x := range adj {
		if !reached[x] {
			continue
		}
		for _, ed := range adj[x] {
			y := ed.to
			if x >= y || prev[x].bond == ed.bond || prev[y].bond == ed.bond {
				continue
			}
			px, py := toRoot(x), toRoot(y)
			onX := make(map[int]bool, len(px))
			for _, a := range px[:len(px)-1] {
				onX[a] = true
			}
			disjoint := true
			for _, a := range py[:len(py)-1] {
				if onX[a] {
					disjoint = false
					break
				}
			}
			if !disjoint {
				continue
			}
			// Walk x up to v, then down to y; the bond y-x closes it.
			path := []pathStep{{atom: x, bond: -1}}
			for _, a := range px[1:] {
				path = append(path, pathStep{atom: a, bond: prev[path[len(path)-1].atom].bond})
			}
			for i := len(py) - 2; i >= 0; i-- {
				path = append(path, pathStep{atom: py[i], bond: prev[py[i]].bond})
			}
			out = append(out, newCandidate(path, ed.bond, nbonds))
		}
	}
	return out
}

type pathStep struct {
	atom int
	bond int
}

// shortestPath runs a BFS from s to e that may not use bond skip.  It
// returns the visited atoms and bonds from s to e, or nil.
func shortestPath(adj [][]edge, s, e, skip int) []pathStep {
	prev := make([]pathStep, len(adj))
	visited := make([]bool, len(adj))
	visited[s] = true
	queue := []int{s}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == e {
			break
		}
		for _, ed := range adj[cur] {
			if ed.bond == skip || visited[ed.to] {
				continue
			}
			visited[ed.to] = true
			prev[ed.to] = pathStep{atom: cur, bond: ed.bond}
			queue = append(queue, ed.to)
		}
	}
	if !visited[e] {
		return nil
	}
	var rev []pathStep
	for cur := e; cur != s; cur = prev[cur].atom {
		rev = append(rev, pathStep{atom: cur, bond: prev[cur].bond})
	}
	path := []pathStep{{atom: s, bond: -1}}
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

func newCandidate(path []pathStep, closing, nbonds int) ringCandidate {
	cand := ringCandidate{bits: newBitset(nbonds)}
	for _, st := range path {
		cand.atoms = append(cand.atoms, st.atom)
		if st.bond >= 0 {
			cand.bonds = append(cand.bonds, st.bond)
		}
	}
	cand.bonds = append(cand.bonds, closing)
	for _, b := range cand.bonds {
		cand.bits.set(b)
	}
	sorted := append([]int(nil), cand.bonds...)
	sort.Ints(sorted)
	var sb strings.Builder
	for _, b := range sorted {
		sb.WriteString(strconv.Itoa(b))
		sb.WriteByte(',')
	}
	cand.key = sb.String()
	return cand
}

func components(adj [][]edge) int {
	seen := make([]bool, len(adj))
	n := 0
	for i := range adj {
		if seen[i] {
			continue
		}
		n++
		stack := []int{i}
		seen[i] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, ed := range adj[cur] {
				if !seen[ed.to] {
					seen[ed.to] = true
					stack = append(stack, ed.to)
				}
			}
		}
	}
	return n
}

// ── GF(2) vectors ────────────────────────────────────────────────────────────

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int) { b[i/64] |= 1 << (uint(i) % 64) }

func (b bitset) lowest() int {
	for w, word := range b {
		if word == 0 {
			continue
		}
		for i := 0; i < 64; i++ {
			if word&(1<<uint(i)) != 0 {
				return w*64 + i
			}
		}
	}
	return -1
}

func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) xor(o bitset) bitset {
	out := make(bitset, len(b))
	for i := range b {
		out[i] = b[i] ^ o[i]
	}
	return out
}

// reduce eliminates v against basis, whose vectors have distinct pivots
// (their lowest set bit).  It reports false when v is dependent.
func reduce(basis []bitset, v bitset) (bitset, bool) {
	cur := append(bitset(nil), v...)
	for changed := true; changed; {
		changed = false
		for _, bv := range basis {
			if p := bv.lowest(); p >= 0 && cur.has(p) {
				cur = cur.xor(bv)
				changed = true
			}
		}
	}
	return cur, cur.lowest() >= 0
}
