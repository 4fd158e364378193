// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package smiles

import (
	"fmt"
	"sort"
)

// ChemistryError reports a syntactically valid SMILES whose structure is not
// chemically sound: an atom bonded beyond its permitted valence, or an
// aromatic system with no alternating single/double bond assignment.
type ChemistryError struct {
	Input  string
	Atom   int // -1 when the error is not tied to one atom
	Symbol string
	Msg    string
}

func (e *ChemistryError) Error() string {
	if e.Atom < 0 {
		return fmt.Sprintf("invalid molecule %q: %s", e.Input, e.Msg)
	}
	return fmt.Sprintf("invalid molecule %q: atom %d (%s): %s", e.Input, e.Atom, e.Symbol, e.Msg)
}

// sanitize kekulizes the aromatic bonds of m and checks every atom with a
// known valence against it. m is not modified.
func sanitize(in string, m *Molecule) error {
	orders, err := kekulize(in, m)
	if err != nil {
		return err
	}
	for i, a := range m.Atoms {
		limit, ok := maxValence(a)
		if !ok {
			continue
		}
		v := 0
		for _, bi := range m.adj[i] {
			v += orders[bi]
		}
		if a.Bracket {
			v += a.HCount
		}
		if v > limit {
			return &ChemistryError{Input: in, Atom: i, Symbol: a.Symbol,
				Msg: fmt.Sprintf("explicit valence %d is greater than permitted %d", v, limit)}
		}
	}
	return nil
}

// maxValence is the highest valence allowed for a. Charged bracket atoms
// and elements outside the organic subset are not checked.
func maxValence(a Atom) (int, bool) {
	if a.Charge != 0 {
		return 0, false
	}
	vs, ok := defaultValences[a.Symbol]
	if !ok {
		return 0, false
	}
	return vs[len(vs)-1], true
}

// piValence is the valence an aromatic atom fills with its sigma bonds,
// hydrogens and at most one ring double bond.
func piValence(a Atom) (int, bool) {
	q := a.Charge
	switch a.Symbol {
	case "C":
		if q < 0 {
			q = -q
		}
		return 4 - q, true
	case "B":
		return 3 - q, true
	case "N", "P", "As":
		return 3 + q, true
	case "O", "S", "Se", "Te":
		return 2 + q, true
	}
	return 0, false
}

// needsDouble reports whether aromatic atom i must take a double bond in
// the Kekulé form.
func needsDouble(m *Molecule, i int) bool {
	a := m.Atoms[i]
	used := 0
	for _, bi := range m.adj[i] {
		if o := m.Bonds[bi].Order; o == Aromatic {
			used++
		} else {
			used += int(o)
		}
	}
	if a.Bracket {
		target, ok := piValence(a)
		if !ok {
			return false
		}
		return target-used-a.HCount >= 1
	}
	for _, v := range defaultValences[a.Symbol] {
		if v >= used {
			return v-used >= 1
		}
	}
	return false
}

// kekulize returns an integer bond order per bond with every aromatic bond
// resolved to 1 or 2 so that each aromatic atom needing a double bond gets
// exactly one.
func kekulize(in string, m *Molecule) ([]int, error) {
	orders := make([]int, len(m.Bonds))
	var aromatic []int
	for bi, b := range m.Bonds {
		if b.Order != Aromatic {
			orders[bi] = int(b.Order)
			continue
		}
		orders[bi] = 1
		if !m.Atoms[b.From].Aromatic || !m.Atoms[b.To].Aromatic {
			return nil, &ChemistryError{Input: in, Atom: -1,
				Msg: fmt.Sprintf("aromatic bond between atoms %d and %d joins a non-aromatic atom", b.From, b.To)}
		}
		aromatic = append(aromatic, bi)
	}

	need := map[int]bool{}
	for i, a := range m.Atoms {
		if a.Aromatic && needsDouble(m, i) {
			need[i] = true
		}
	}
	if len(need) == 0 {
		return orders, nil
	}

	// candidate partners per atom, over aromatic bonds only
	edges := map[int][]int{}
	for _, bi := range aromatic {
		b := m.Bonds[bi]
		if need[b.From] && need[b.To] {
			edges[b.From] = append(edges[b.From], bi)
			edges[b.To] = append(edges[b.To], bi)
		}
	}

	matched := map[int]bool{}
	if !match(m, need, edges, matched, orders) {
		return nil, &ChemistryError{Input: in, Atom: -1, Msg: "can't kekulize aromatic system"}
	}
	return orders, nil
}

// match assigns double bonds by backtracking, always branching on the
// unmatched atom with the fewest free partners.
func match(m *Molecule, need map[int]bool, edges map[int][]int, matched map[int]bool, orders []int) bool {
	best, bestFree := -1, 0
	atoms := make([]int, 0, len(need))
	for i := range need {
		atoms = append(atoms, i)
	}
	sort.Ints(atoms)
	for _, i := range atoms {
		if matched[i] {
			continue
		}
		free := 0
		for _, bi := range edges[i] {
			if !matched[m.Other(bi, i)] {
				free++
			}
		}
		if free == 0 {
			return false
		}
		if best < 0 || free < bestFree {
			best, bestFree = i, free
		}
	}
	if best < 0 {
		return true
	}

	for _, bi := range edges[best] {
		j := m.Other(bi, best)
		if matched[j] {
			continue
		}
		matched[best], matched[j] = true, true
		orders[bi] = 2
		if match(m, need, edges, matched, orders) {
			return true
		}
		orders[bi] = 1
		delete(matched, best)
		delete(matched, j)
	}
	return false
}
