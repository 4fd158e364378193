// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"

	"github.com/pdiddy/cddprep/internal/table"
)

// Origin tags where a joined row came from.
type Origin string

const (
	Both      Origin = "both"
	LeftOnly  Origin = "left_only"
	RightOnly Origin = "right_only"
)

// Joined is the result of OuterJoin: the combined table plus one Origin per row.
type Joined struct {
	Table   *table.Table
	Origins []Origin
}

// Filter returns the rows of j whose origin is o, without the indicator.
func (j *Joined) Filter(o Origin) *table.Table {
	out := &table.Table{Columns: append([]string(nil), j.Table.Columns...)}
	for i, row := range j.Table.Rows {
		if j.Origins[i] == o {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// OuterJoin performs a full outer equi-join of left and right on
// left[leftKey] == right[rightKey].
//
// Columns are all of left's followed by all of right's. A non-key name that
// appears on both sides gets an _x suffix on the left and _y on the right.
// Each left row is followed by its matches in right order; a key repeated on
// both sides yields every pairing. Right rows never matched come last, in
// right order.
func OuterJoin(left, right *table.Table, leftKey, rightKey string) (*Joined, error) {
	li := left.Index(leftKey)
	if li < 0 {
		return nil, fmt.Errorf("left table has no column %q", leftKey)
	}
	ri := right.Index(rightKey)
	if ri < 0 {
		return nil, fmt.Errorf("right table has no column %q", rightKey)
	}

	cols := joinColumns(left.Columns, right.Columns, leftKey, rightKey)

	byKey := make(map[string][]int, right.Len())
	for i, row := range right.Rows {
		byKey[row[ri]] = append(byKey[row[ri]], i)
	}

	nl, nr := len(left.Columns), len(right.Columns)
	matched := make([]bool, right.Len())
	j := &Joined{Table: &table.Table{Columns: cols}}

	for _, lrow := range left.Rows {
		hits := byKey[lrow[li]]
		if len(hits) == 0 {
			row := make([]string, nl+nr)
			copy(row, lrow)
			j.Table.Rows = append(j.Table.Rows, row)
			j.Origins = append(j.Origins, LeftOnly)
			continue
		}
		for _, h := range hits {
			matched[h] = true
			row := make([]string, 0, nl+nr)
			row = append(row, lrow...)
			row = append(row, right.Rows[h]...)
			j.Table.Rows = append(j.Table.Rows, row)
			j.Origins = append(j.Origins, Both)
		}
	}

	for i, rrow := range right.Rows {
		if matched[i] {
			continue
		}
		row := make([]string, nl+nr)
		copy(row[nl:], rrow)
		if leftKey == rightKey {
			row[li] = rrow[ri]
		}
		j.Table.Rows = append(j.Table.Rows, row)
		j.Origins = append(j.Origins, RightOnly)
	}

	if leftKey == rightKey {
		dropColumn(j.Table, nl+ri)
	}
	return j, nil
}

// joinColumns names the joined columns, suffixing overlapping non-key names.
func joinColumns(left, right []string, leftKey, rightKey string) []string {
	inLeft := make(map[string]bool, len(left))
	for _, c := range left {
		inLeft[c] = true
	}
	inRight := make(map[string]bool, len(right))
	for _, c := range right {
		inRight[c] = true
	}
	shared := func(c string) bool {
		return inLeft[c] && inRight[c] && !(leftKey == rightKey && c == leftKey)
	}

	cols := make([]string, 0, len(left)+len(right))
	for _, c := range left {
		if shared(c) {
			c += "_x"
		}
		cols = append(cols, c)
	}
	for _, c := range right {
		if shared(c) {
			c += "_y"
		}
		cols = append(cols, c)
	}
	return cols
}

// dropColumn removes column k from t. Used when both sides share the key
// name, which then appears once.
func dropColumn(t *table.Table, k int) {
	t.Columns = append(t.Columns[:k:k], t.Columns[k+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:k:k], row[k+1:]...)
	}
}
