// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package smiles parses SMILES line notation into a molecular graph.
//
// The grammar covers the organic subset, bracket atoms (isotope, chirality,
// hydrogen count, charge, atom class), explicit bonds, branches, ring
// closures including %nn, and '.' disconnections. Parse rejects input that
// a depiction toolkit would also reject: unknown elements, unbalanced
// branches, unclosed rings, and dangling bonds as *SyntaxError, and atoms
// over their permitted valence or aromatic rings that cannot be kekulized
// as *ChemistryError.
package smiles

import (
	"fmt"
	"strings"
)

// SyntaxError reports where and why a SMILES string is invalid.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SMILES parse error at position %d in %q: %s", e.Pos, e.Input, e.Msg)
}

type pendingBond struct {
	order  Order
	stereo byte
	set    bool
}

type ringOpen struct {
	atom int
	bond pendingBond
	pos  int
}

type parser struct {
	in   string
	pos  int
	mol  *Molecule
	prev int

	bond     pendingBond
	bondPos  int
	branches []int
	rings    map[int]ringOpen
	afterDot bool
}

// Parse parses s into a Molecule and checks that it is chemically sound.
func Parse(s string) (*Molecule, error) {
	p := &parser{
		in:    strings.TrimSpace(s),
		mol:   &Molecule{},
		prev:  -1,
		rings: map[int]ringOpen{},
	}
	if p.in == "" {
		return nil, p.errorf(0, "empty SMILES")
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := sanitize(p.in, p.mol); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Input: p.in, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() error {
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf(p.pos, "branch opened before any atom")
			}
			if p.bond.set {
				return p.errorf(p.pos, "bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.errorf(p.pos, "unbalanced ')'")
			}
			if p.bond.set {
				return p.errorf(p.bondPos, "bond symbol at end of branch")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case strings.IndexByte(`-=#$:/\`, c) >= 0:
			if p.prev < 0 {
				return p.errorf(p.pos, "bond %q before any atom", c)
			}
			if p.bond.set {
				return p.errorf(p.pos, "two consecutive bond symbols")
			}
			p.bond = bondFor(c)
			p.bondPos = p.pos
			p.pos++
		case c == '.':
			if p.prev < 0 {
				return p.errorf(p.pos, "'.' before any atom")
			}
			if p.bond.set {
				return p.errorf(p.bondPos, "bond symbol before '.'")
			}
			p.prev = -1
			p.afterDot = true
			p.pos++
		case c == '%' || (c >= '0' && c <= '9'):
			if err := p.ringBond(); err != nil {
				return err
			}
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		}
	}

	if p.bond.set {
		return p.errorf(p.bondPos, "bond symbol at end of input")
	}
	if len(p.branches) > 0 {
		return p.errorf(len(p.in), "unclosed branch '('")
	}
	if p.afterDot {
		return p.errorf(len(p.in), "'.' at end of input")
	}
	if len(p.rings) > 0 {
		first := -1
		for n, r := range p.rings {
			if first < 0 || r.pos < p.rings[first].pos {
				first = n
			}
		}
		return p.errorf(p.rings[first].pos, "unclosed ring bond %d", first)
	}
	return nil
}

func bondFor(c byte) pendingBond {
	switch c {
	case '=':
		return pendingBond{order: Double, set: true}
	case '#':
		return pendingBond{order: Triple, set: true}
	case '$':
		return pendingBond{order: Quadruple, set: true}
	case ':':
		return pendingBond{order: Aromatic, set: true}
	case '/', '\\':
		return pendingBond{order: Single, stereo: c, set: true}
	}
	return pendingBond{order: Single, set: true}
}

// implicitOrder is the order of an unwritten bond between atoms a and b.
func (p *parser) implicitOrder(a, b int) Order {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return Aromatic
	}
	return Single
}

func (p *parser) attach(a Atom) {
	i := p.mol.addAtom(a)
	if p.prev >= 0 {
		order := p.bond.order
		if !p.bond.set {
			order = p.implicitOrder(p.prev, i)
		}
		p.mol.addBond(Bond{From: p.prev, To: i, Order: order, Stereo: p.bond.stereo})
	}
	p.bond = pendingBond{}
	p.prev = i
	p.afterDot = false
}

func (p *parser) ringBond() error {
	start := p.pos
	if p.prev < 0 {
		return p.errorf(start, "ring bond before any atom")
	}
	var n int
	if p.in[p.pos] == '%' {
		if p.pos+2 >= len(p.in) || !isDigit(p.in[p.pos+1]) || !isDigit(p.in[p.pos+2]) {
			return p.errorf(start, "'%%' must be followed by two digits")
		}
		n = int(p.in[p.pos+1]-'0')*10 + int(p.in[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.in[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.bond, pos: start}
		p.bond = pendingBond{}
		return nil
	}

	delete(p.rings, n)
	if open.atom == p.prev {
		return p.errorf(start, "ring bond %d closes on its own atom", n)
	}
	if p.mol.bonded(open.atom, p.prev) {
		return p.errorf(start, "ring bond %d duplicates an existing bond", n)
	}
	var b pendingBond
	switch {
	case open.bond.set && p.bond.set && open.bond.order != p.bond.order:
		return p.errorf(start, "ring bond %d has conflicting bond orders", n)
	case p.bond.set:
		b = p.bond
	case open.bond.set:
		b = open.bond
	default:
		b = pendingBond{order: p.implicitOrder(open.atom, p.prev)}
	}
	p.mol.addBond(Bond{From: open.atom, To: p.prev, Order: b.order, Stereo: b.stereo})
	p.bond = pendingBond{}
	return nil
}

func (p *parser) organicAtom() (Atom, error) {
	rest := p.in[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return Atom{Symbol: two}, nil
		}
	}
	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return Atom{Symbol: string(c)}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		return Atom{Symbol: strings.ToUpper(string(c)), Aromatic: true}, nil
	case '*':
		p.pos++
		return Atom{Symbol: "*"}, nil
	}
	return Atom{}, p.errorf(p.pos, "unexpected character %q", c)
}

func (p *parser) bracketAtom() (Atom, error) {
	open := p.pos
	end := strings.IndexByte(p.in[open:], ']')
	if end < 0 {
		return Atom{}, p.errorf(open, "unclosed '['")
	}
	body := p.in[open+1 : open+end]
	p.pos = open + end + 1

	a := Atom{Bracket: true}
	i := 0
	fail := func(msg string, args ...any) (Atom, error) {
		return Atom{}, p.errorf(open+1+i, msg, args...)
	}

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	sym, ok := bracketSymbol(body[i:])
	if !ok {
		if i >= len(body) {
			return fail("missing element symbol")
		}
		return fail("unknown element in %q", body)
	}
	if canon, arom := aromaticBracket[sym]; arom {
		a.Symbol, a.Aromatic = canon, true
	} else {
		a.Symbol = sym
	}
	i += len(sym)

	if i < len(body) && body[i] == '@' {
		j := i
		for j < len(body) && body[j] == '@' {
			j++
		}
		if j+1 < len(body) {
			switch body[j : j+2] {
			case "TH", "AL", "SP", "TB", "OH":
				j += 2
				for j < len(body) && isDigit(body[j]) {
					j++
				}
			}
		}
		a.Chirality = body[i:j]
		i = j
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		c := body[i]
		i++
		mag := 1
		switch {
		case i < len(body) && isDigit(body[i]):
			mag = 0
			for i < len(body) && isDigit(body[i]) {
				mag = mag*10 + int(body[i]-'0')
				i++
			}
		default:
			for i < len(body) && body[i] == c {
				mag++
				i++
			}
		}
		a.Charge = sign * mag
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return fail("atom class must be a number")
		}
		for i < len(body) && isDigit(body[i]) {
			a.Class = a.Class*10 + int(body[i]-'0')
			i++
		}
	}

	if i != len(body) {
		return fail("unexpected %q in bracket atom", body[i:])
	}
	return a, nil
}

// bracketSymbol reads the longest element or aromatic symbol at the start of s.
func bracketSymbol(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if s[0] == '*' {
		return "*", true
	}
	if len(s) >= 2 {
		if _, ok := aromaticBracket[s[:2]]; ok {
			return s[:2], true
		}
		if isUpper(s[0]) && isLower(s[1]) && elements[s[:2]] {
			return s[:2], true
		}
	}
	if _, ok := aromaticBracket[s[:1]]; ok {
		return s[:1], true
	}
	if elements[s[:1]] {
		return s[:1], true
	}
	return "", false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
