// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package smiles

import (
	"fmt"
	"sort"
	"strings"
)

// Order is a bond order.
type Order int

const (
	Single Order = iota + 1
	Double
	Triple
	Quadruple
	Aromatic
)

// Atom is one parsed atom.
type Atom struct {
	Symbol    string // "C", "Cl", "*" for a wildcard
	Aromatic  bool
	Bracket   bool // written as [..]; hydrogens are explicit
	Isotope   int
	Charge    int
	HCount    int // bracket hydrogens; computed later for organic-subset atoms
	Chirality string
	Class     int
}

// Bond joins two atoms by index.
type Bond struct {
	From, To int
	Order    Order
	Stereo   byte // '/' or '\\' for directional single bonds
}

// Molecule is the graph described by one SMILES string, possibly with
// several disconnected components.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	adj [][]int // bond indices per atom
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) bonded(a, b int) bool {
	for _, bi := range m.adj[a] {
		if m.Other(bi, a) == b {
			return true
		}
	}
	return false
}

func (m *Molecule) addBond(b Bond) {
	m.Bonds = append(m.Bonds, b)
	i := len(m.Bonds) - 1
	m.adj[b.From] = append(m.adj[b.From], i)
	m.adj[b.To] = append(m.adj[b.To], i)
}

// Other returns the atom at the far end of bond bi from atom a.
func (m *Molecule) Other(bi, a int) int {
	b := m.Bonds[bi]
	if b.From == a {
		return b.To
	}
	return b.From
}

// Neighbors returns the atoms bonded to atom i, in bond order of appearance.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, len(m.adj[i]))
	for k, bi := range m.adj[i] {
		out[k] = m.Other(bi, i)
	}
	return out
}

// BondsOf returns the indices of the bonds touching atom i.
func (m *Molecule) BondsOf(i int) []int {
	return append([]int(nil), m.adj[i]...)
}

// ImplicitH returns the hydrogens attached to atom i: the bracket count for
// bracket atoms, otherwise the lowest default valence that fits the bonds.
func (m *Molecule) ImplicitH(i int) int {
	a := m.Atoms[i]
	if a.Bracket {
		return a.HCount
	}
	valences, ok := defaultValences[a.Symbol]
	if !ok {
		return 0
	}
	sum := 0
	for _, bi := range m.adj[i] {
		switch o := m.Bonds[bi].Order; o {
		case Aromatic:
			sum++
		default:
			sum += int(o)
		}
	}
	for _, v := range valences {
		if v < sum {
			continue
		}
		h := v - sum
		if a.Aromatic {
			// one valence is spent on the aromatic system
			h--
		}
		if h < 0 {
			return 0
		}
		return h
	}
	return 0
}

// Formula returns the molecular formula in Hill order with the net charge
// appended, e.g. "C2H6O" or "H4N+".
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	charge := 0
	for i, a := range m.Atoms {
		charge += a.Charge
		if h := m.ImplicitH(i); h > 0 {
			counts["H"] += h
		}
		if a.Symbol == "*" {
			continue
		}
		counts[a.Symbol]++
	}

	var syms []string
	for s := range counts {
		syms = append(syms, s)
	}
	_, hasC := counts["C"]
	sort.Slice(syms, func(i, j int) bool {
		if hasC {
			if r := hillRank(syms[i]) - hillRank(syms[j]); r != 0 {
				return r < 0
			}
		}
		return syms[i] < syms[j]
	})

	var b strings.Builder
	for _, s := range syms {
		b.WriteString(s)
		if n := counts[s]; n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	switch {
	case charge == 1:
		b.WriteString("+")
	case charge == -1:
		b.WriteString("-")
	case charge > 1:
		fmt.Fprintf(&b, "+%d", charge)
	case charge < -1:
		fmt.Fprintf(&b, "-%d", -charge)
	}
	return b.String()
}

func hillRank(sym string) int {
	switch sym {
	case "C":
		return 0
	case "H":
		return 1
	}
	return 2
}

// Components groups atom indices by connected component, in order of each
// component's first atom.
func (m *Molecule) Components() [][]int {
	seen := make([]bool, len(m.Atoms))
	var comps [][]int
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, a)
			for _, n := range m.Neighbors(a) {
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}
