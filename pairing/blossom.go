package pairing

// Maximum-weight matching on a general graph using Edmonds' blossom
// algorithm with Galil's primal-dual updates, O(n^3). Cardinality is
// maximised first, so on a complete graph with an even vertex count the
// result is always a perfect matching of maximum total weight.
//
// All arithmetic is integral; edge weights must be non-negative.

type edge struct {
	i, j int
	w    int64
}

type matcher struct {
	n     int
	edges []edge

	// endpoint[p] is the vertex at end p of edge p/2.
	endpoint  []int
	neighbend [][]int

	// mate[v] is the remote endpoint of v's matched edge, or -1.
	mate []int

	// label: 0 free, 1 S-vertex/blossom, 2 T-vertex/blossom.
	label    []int
	labelend []int

	inblossom        []int
	blossomparent    []int
	blossomchilds    [][]int
	blossombase      []int
	blossomendps     [][]int
	bestedge         []int
	blossombestedges [][]int
	unusedblossoms   []int
	dualvar          []int64
	allowedge        []bool
	queue            []int
}

// maxWeightMatching returns mate[v] = partner vertex, or -1 when v is unmatched.
func maxWeightMatching(n int, edges []edge) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	if n == 0 || len(edges) == 0 {
		return result
	}

	var maxweight int64
	for _, e := range edges {
		if e.w > maxweight {
			maxweight = e.w
		}
	}

	m := &matcher{n: n, edges: edges}
	m.endpoint = make([]int, 2*len(edges))
	m.neighbend = make([][]int, n)
	for k, e := range edges {
		m.endpoint[2*k] = e.i
		m.endpoint[2*k+1] = e.j
		m.neighbend[e.i] = append(m.neighbend[e.i], 2*k+1)
		m.neighbend[e.j] = append(m.neighbend[e.j], 2*k)
	}

	m.mate = filled(n, -1)
	m.label = make([]int, 2*n)
	m.labelend = filled(2*n, -1)
	m.inblossom = make([]int, n)
	for v := range m.inblossom {
		m.inblossom[v] = v
	}
	m.blossomparent = filled(2*n, -1)
	m.blossomchilds = make([][]int, 2*n)
	m.blossombase = filled(2*n, -1)
	for v := 0; v < n; v++ {
		m.blossombase[v] = v
	}
	m.blossomendps = make([][]int, 2*n)
	m.bestedge = filled(2*n, -1)
	m.blossombestedges = make([][]int, 2*n)
	for b := 2*n - 1; b >= n; b-- {
		m.unusedblossoms = append(m.unusedblossoms, b)
	}
	m.dualvar = make([]int64, 2*n)
	for v := 0; v < n; v++ {
		m.dualvar[v] = maxweight
	}
	m.allowedge = make([]bool, len(edges))

	for stage := 0; stage < n; stage++ {
		if !m.runStage() {
			break
		}
	}

	for v := 0; v < n; v++ {
		if m.mate[v] >= 0 {
			result[v] = m.endpoint[m.mate[v]]
		}
	}
	return result
}

func filled(n, value int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func (m *matcher) slack(k int) int64 {
	e := m.edges[k]
	return m.dualvar[e.i] + m.dualvar[e.j] - 2*e.w
}

func (m *matcher) leaves(b int, out []int) []int {
	if b < m.n {
		return append(out, b)
	}
	for _, t := range m.blossomchilds[b] {
		if t < m.n {
			out = append(out, t)
		} else {
			out = m.leaves(t, out)
		}
	}
	return out
}

// runStage grows alternating trees until one augmenting path is found.
// It reports false once no augmenting path exists.
func (m *matcher) runStage() bool {
	for i := range m.label {
		m.label[i] = 0
		m.bestedge[i] = -1
	}
	for b := m.n; b < 2*m.n; b++ {
		m.blossombestedges[b] = nil
	}
	for k := range m.allowedge {
		m.allowedge[k] = false
	}
	m.queue = m.queue[:0]

	for v := 0; v < m.n; v++ {
		if m.mate[v] == -1 && m.label[m.inblossom[v]] == 0 {
			m.assignLabel(v, 1, -1)
		}
	}

	augmented := false
	for {
		for len(m.queue) > 0 && !augmented {
			v := m.queue[len(m.queue)-1]
			m.queue = m.queue[:len(m.queue)-1]

			for _, p := range m.neighbend[v] {
				k := p / 2
				w := m.endpoint[p]
				if m.inblossom[v] == m.inblossom[w] {
					continue
				}
				var kslack int64
				if !m.allowedge[k] {
					kslack = m.slack(k)
					if kslack <= 0 {
						m.allowedge[k] = true
					}
				}
				if m.allowedge[k] {
					switch {
					case m.label[m.inblossom[w]] == 0:
						m.assignLabel(w, 2, p^1)
					case m.label[m.inblossom[w]] == 1:
						if base := m.scanBlossom(v, w); base >= 0 {
							m.addBlossom(base, k)
						} else {
							m.augmentMatching(k)
							augmented = true
						}
					case m.label[w] == 0:
						m.label[w] = 2
						m.labelend[w] = p ^ 1
					}
					if augmented {
						break
					}
				} else if m.label[m.inblossom[w]] == 1 {
					b := m.inblossom[v]
					if m.bestedge[b] == -1 || kslack < m.slack(m.bestedge[b]) {
						m.bestedge[b] = k
					}
				} else if m.label[w] == 0 {
					if m.bestedge[w] == -1 || kslack < m.slack(m.bestedge[w]) {
						m.bestedge[w] = k
					}
				}
			}
		}
		if augmented {
			break
		}

		deltatype := -1
		var delta int64
		deltaedge, deltablossom := -1, -1

		for v := 0; v < m.n; v++ {
			if m.label[m.inblossom[v]] == 0 && m.bestedge[v] != -1 {
				d := m.slack(m.bestedge[v])
				if deltatype == -1 || d < delta {
					delta, deltatype, deltaedge = d, 2, m.bestedge[v]
				}
			}
		}
		for b := 0; b < 2*m.n; b++ {
			if m.blossomparent[b] == -1 && m.label[b] == 1 && m.bestedge[b] != -1 {
				d := m.slack(m.bestedge[b]) / 2
				if deltatype == -1 || d < delta {
					delta, deltatype, deltaedge = d, 3, m.bestedge[b]
				}
			}
		}
		for b := m.n; b < 2*m.n; b++ {
			if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 && m.label[b] == 2 &&
				(deltatype == -1 || m.dualvar[b] < delta) {
				delta, deltatype, deltablossom = m.dualvar[b], 4, b
			}
		}
		if deltatype == -1 {
			// No further improvement possible; the matching has maximum cardinality.
			deltatype = 1
			delta = m.dualvar[0]
			for v := 1; v < m.n; v++ {
				if m.dualvar[v] < delta {
					delta = m.dualvar[v]
				}
			}
			if delta < 0 {
				delta = 0
			}
		}

		for v := 0; v < m.n; v++ {
			switch m.label[m.inblossom[v]] {
			case 1:
				m.dualvar[v] -= delta
			case 2:
				m.dualvar[v] += delta
			}
		}
		for b := m.n; b < 2*m.n; b++ {
			if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 {
				switch m.label[b] {
				case 1:
					m.dualvar[b] += delta
				case 2:
					m.dualvar[b] -= delta
				}
			}
		}

		if deltatype == 1 {
			break
		}
		switch deltatype {
		case 2:
			m.allowedge[deltaedge] = true
			e := m.edges[deltaedge]
			i := e.i
			if m.label[m.inblossom[i]] == 0 {
				i = e.j
			}
			m.queue = append(m.queue, i)
		case 3:
			m.allowedge[deltaedge] = true
			m.queue = append(m.queue, m.edges[deltaedge].i)
		case 4:
			m.expandBlossom(deltablossom, false)
		}
	}

	if !augmented {
		return false
	}

	for b := m.n; b < 2*m.n; b++ {
		if m.blossomparent[b] == -1 && m.blossombase[b] >= 0 && m.label[b] == 1 && m.dualvar[b] == 0 {
			m.expandBlossom(b, true)
		}
	}
	return true
}

func (m *matcher) assignLabel(w, t, p int) {
	b := m.inblossom[w]
	m.label[w], m.label[b] = t, t
	m.labelend[w], m.labelend[b] = p, p
	m.bestedge[w], m.bestedge[b] = -1, -1
	if t == 1 {
		m.queue = m.leaves(b, m.queue)
		return
	}
	base := m.blossombase[b]
	m.assignLabel(m.endpoint[m.mate[base]], 1, m.mate[base]^1)
}

// scanBlossom traces back from v and w to find either a new blossom base
// or, when the trees are disjoint, an augmenting path (returns -1).
func (m *matcher) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 {
		b := m.inblossom[v]
		if m.label[b]&4 != 0 {
			base = m.blossombase[b]
			break
		}
		path = append(path, b)
		m.label[b] = 5
		if m.labelend[b] == -1 {
			v = -1
		} else {
			v = m.endpoint[m.labelend[b]]
			b = m.inblossom[v]
			v = m.endpoint[m.labelend[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		m.label[b] = 1
	}
	return base
}

func (m *matcher) addBlossom(base, k int) {
	v, w := m.edges[k].i, m.edges[k].j
	bb := m.inblossom[base]
	bv := m.inblossom[v]
	bw := m.inblossom[w]

	b := m.unusedblossoms[len(m.unusedblossoms)-1]
	m.unusedblossoms = m.unusedblossoms[:len(m.unusedblossoms)-1]
	m.blossombase[b] = base
	m.blossomparent[b] = -1
	m.blossomparent[bb] = b

	var path, endps []int
	for bv != bb {
		m.blossomparent[bv] = b
		path = append(path, bv)
		endps = append(endps, m.labelend[bv])
		v = m.endpoint[m.labelend[bv]]
		bv = m.inblossom[v]
	}
	path = append(path, bb)
	reverseInts(path)
	reverseInts(endps)
	endps = append(endps, 2*k)
	for bw != bb {
		m.blossomparent[bw] = b
		path = append(path, bw)
		endps = append(endps, m.labelend[bw]^1)
		w = m.endpoint[m.labelend[bw]]
		bw = m.inblossom[w]
	}

	m.blossomchilds[b] = path
	m.blossomendps[b] = endps
	m.label[b] = 1
	m.labelend[b] = m.labelend[bb]
	m.dualvar[b] = 0

	for _, leaf := range m.leaves(b, nil) {
		if m.label[m.inblossom[leaf]] == 2 {
			m.queue = append(m.queue, leaf)
		}
		m.inblossom[leaf] = b
	}

	bestedgeto := filled(2*m.n, -1)
	for _, sub := range path {
		var nblists [][]int
		if m.blossombestedges[sub] == nil {
			for _, leaf := range m.leaves(sub, nil) {
				nb := make([]int, len(m.neighbend[leaf]))
				for i, p := range m.neighbend[leaf] {
					nb[i] = p / 2
				}
				nblists = append(nblists, nb)
			}
		} else {
			nblists = [][]int{m.blossombestedges[sub]}
		}
		for _, nblist := range nblists {
			for _, ek := range nblist {
				j := m.edges[ek].j
				if m.inblossom[j] == b {
					j = m.edges[ek].i
				}
				bj := m.inblossom[j]
				if bj != b && m.label[bj] == 1 &&
					(bestedgeto[bj] == -1 || m.slack(ek) < m.slack(bestedgeto[bj])) {
					bestedgeto[bj] = ek
				}
			}
		}
		m.blossombestedges[sub] = nil
		m.bestedge[sub] = -1
	}

	best := make([]int, 0, len(bestedgeto))
	for _, ek := range bestedgeto {
		if ek != -1 {
			best = append(best, ek)
		}
	}
	m.blossombestedges[b] = best
	m.bestedge[b] = -1
	for _, ek := range best {
		if m.bestedge[b] == -1 || m.slack(ek) < m.slack(m.bestedge[b]) {
			m.bestedge[b] = ek
		}
	}
}

func (m *matcher) expandBlossom(b int, endstage bool) {
	for _, s := range m.blossomchilds[b] {
		m.blossomparent[s] = -1
		switch {
		case s < m.n:
			m.inblossom[s] = s
		case endstage && m.dualvar[s] == 0:
			m.expandBlossom(s, endstage)
		default:
			for _, leaf := range m.leaves(s, nil) {
				m.inblossom[leaf] = s
			}
		}
	}

	if !endstage && m.label[b] == 2 {
		childs := m.blossomchilds[b]
		endps := m.blossomendps[b]
		l := len(childs)
		at := func(j int) int { return ((j % l) + l) % l }

		entrychild := m.inblossom[m.endpoint[m.labelend[b]^1]]
		j := indexOf(childs, entrychild)
		var jstep, endptrick int
		if j&1 != 0 {
			j -= l
			jstep, endptrick = 1, 0
		} else {
			jstep, endptrick = -1, 1
		}

		p := m.labelend[b]
		for j != 0 {
			m.label[m.endpoint[p^1]] = 0
			m.label[m.endpoint[endps[at(j-endptrick)]^endptrick^1]] = 0
			m.assignLabel(m.endpoint[p^1], 2, p)
			m.allowedge[endps[at(j-endptrick)]/2] = true
			j += jstep
			p = endps[at(j-endptrick)] ^ endptrick
			m.allowedge[p/2] = true
			j += jstep
		}

		bv := childs[at(j)]
		m.label[m.endpoint[p^1]] = 2
		m.label[bv] = 2
		m.labelend[m.endpoint[p^1]] = p
		m.labelend[bv] = p
		m.bestedge[bv] = -1

		j += jstep
		for childs[at(j)] != entrychild {
			bv = childs[at(j)]
			if m.label[bv] == 1 {
				j += jstep
				continue
			}
			reached := -1
			for _, leaf := range m.leaves(bv, nil) {
				if m.label[leaf] != 0 {
					reached = leaf
					break
				}
			}
			if reached >= 0 {
				m.label[reached] = 0
				m.label[m.endpoint[m.mate[m.blossombase[bv]]]] = 0
				m.assignLabel(reached, 2, m.labelend[reached])
			}
			j += jstep
		}
	}

	m.label[b] = -1
	m.labelend[b] = -1
	m.blossomchilds[b] = nil
	m.blossomendps[b] = nil
	m.blossombase[b] = -1
	m.blossombestedges[b] = nil
	m.bestedge[b] = -1
	m.unusedblossoms = append(m.unusedblossoms, b)
}

func (m *matcher) augmentBlossom(b, v int) {
	t := v
	for m.blossomparent[t] != b {
		t = m.blossomparent[t]
	}
	if t >= m.n {
		m.augmentBlossom(t, v)
	}

	childs := m.blossomchilds[b]
	endps := m.blossomendps[b]
	l := len(childs)
	at := func(j int) int { return ((j % l) + l) % l }

	i := indexOf(childs, t)
	j := i
	var jstep, endptrick int
	if i&1 != 0 {
		j -= l
		jstep, endptrick = 1, 0
	} else {
		jstep, endptrick = -1, 1
	}

	for j != 0 {
		j += jstep
		t = childs[at(j)]
		p := endps[at(j-endptrick)] ^ endptrick
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p])
		}
		j += jstep
		t = childs[at(j)]
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p^1])
		}
		m.mate[m.endpoint[p]] = p ^ 1
		m.mate[m.endpoint[p^1]] = p
	}

	m.blossomchilds[b] = append(append([]int{}, childs[i:]...), childs[:i]...)
	m.blossomendps[b] = append(append([]int{}, endps[i:]...), endps[:i]...)
	m.blossombase[b] = m.blossombase[m.blossomchilds[b][0]]
}

func (m *matcher) augmentMatching(k int) {
	e := m.edges[k]
	for _, start := range [2][2]int{{e.i, 2*k + 1}, {e.j, 2 * k}} {
		s, p := start[0], start[1]
		for {
			bs := m.inblossom[s]
			if bs >= m.n {
				m.augmentBlossom(bs, s)
			}
			m.mate[s] = p
			if m.labelend[bs] == -1 {
				break
			}
			t := m.endpoint[m.labelend[bs]]
			bt := m.inblossom[t]
			s = m.endpoint[m.labelend[bt]]
			j := m.endpoint[m.labelend[bt]^1]
			if bt >= m.n {
				m.augmentBlossom(bt, j)
			}
			m.mate[j] = m.labelend[bt]
			p = m.labelend[bt] ^ 1
		}
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// minCostPerfectMatching pairs vertices 0..n-1 (n even) so that the summed
// cost(i, j) over all pairs is minimal. cost must be non-negative.
func minCostPerfectMatching(n int, cost func(i, j int) int64) [][2]int {
	if n == 0 {
		return nil
	}
	costs := make([]int64, 0, n*(n-1)/2)
	var maxCost int64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := cost(i, j)
			costs = append(costs, c)
			if c > maxCost {
				maxCost = c
			}
		}
	}

	edges := make([]edge, 0, len(costs))
	idx := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, edge{i: i, j: j, w: maxCost + 1 - costs[idx]})
			idx++
		}
	}

	mate := maxWeightMatching(n, edges)
	pairs := make([][2]int, 0, n/2)
	for v, u := range mate {
		if u > v {
			pairs = append(pairs, [2]int{v, u})
		}
	}
	return pairs
}
