// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cddprep/internal/table"
)

func TestOuterJoinIndicator(t *testing.T) {
	left := table.MustNew([]string{"k", "l"}, []string{"a", "1"}, []string{"b", "2"})
	right := table.MustNew([]string{"key", "r"}, []string{"c", "x"}, []string{"a", "y"}, []string{"a", "z"})

	j, err := OuterJoin(left, right, "k", "key")
	require.NoError(t, err)

	assert.Equal(t, []string{"k", "l", "key", "r"}, j.Table.Columns)
	assert.Equal(t, [][]string{
		{"a", "1", "a", "y"},
		{"a", "1", "a", "z"},
		{"b", "2", "", ""},
		{"", "", "c", "x"},
	}, j.Table.Rows)
	assert.Equal(t, []Origin{Both, Both, LeftOnly, RightOnly}, j.Origins)

	assert.Equal(t, 2, j.Filter(Both).Len())
	assert.Equal(t, []string{"b"}, j.Filter(LeftOnly).Column("k"))
	assert.Equal(t, []string{"c"}, j.Filter(RightOnly).Column("key"))
}

func TestOuterJoinSuffixesSharedColumns(t *testing.T) {
	left := table.MustNew([]string{"id", "note"}, []string{"1", "left"})
	right := table.MustNew([]string{"id", "note"}, []string{"1", "right"}, []string{"2", "orphan"})

	j, err := OuterJoin(left, right, "id", "id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "note_x", "note_y"}, j.Table.Columns)
	assert.Equal(t, [][]string{
		{"1", "left", "right"},
		{"2", "", "orphan"},
	}, j.Table.Rows)
}

func TestOuterJoinUnknownKey(t *testing.T) {
	left := table.MustNew([]string{"a"})
	right := table.MustNew([]string{"b"})

	_, err := OuterJoin(left, right, "x", "b")
	assert.ErrorContains(t, err, `"x"`)
	_, err = OuterJoin(left, right, "a", "y")
	assert.ErrorContains(t, err, `"y"`)
}
