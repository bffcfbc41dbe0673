package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 10, want: 0},
		{total: 1, limit: 10, want: 1},
		{total: 9, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 25, limit: 10, want: 3},
		{total: 100, limit: 100, want: 1},
		{total: 101, limit: 100, want: 2},
		{total: 7, limit: 1, want: 7},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, PageCount(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}
