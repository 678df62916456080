package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPageRequest(t *testing.T) {
	allowed := []string{"id", "email", "created_at"}

	tests := []struct {
		name    string
		page    int
		size    int
		sortBy  string
		sort    string
		want    PageRequest
		wantErr bool
	}{
		{
			name: "first page",
			page: 1, size: 20, sortBy: "created_at", sort: "desc",
			want: PageRequest{Page: 0, Size: 20, SortBy: "created_at", Desc: true},
		},
		{
			name: "third page",
			page: 3, size: 10,
			want: PageRequest{Page: 2, Size: 10},
		},
		{
			name: "sort direction case insensitive",
			page: 1, size: 20, sortBy: "email", sort: "DESC",
			want: PageRequest{Page: 0, Size: 20, SortBy: "email", Desc: true},
		},
		{
			name: "unknown direction defaults to ascending",
			page: 1, size: 20, sortBy: "email", sort: "sideways",
			want: PageRequest{Page: 0, Size: 20, SortBy: "email"},
		},
		{
			name: "unknown sort column silently dropped",
			page: 1, size: 20, sortBy: "password_hash", sort: "desc",
			want: PageRequest{Page: 0, Size: 20, Desc: true},
		},
		{
			name: "page zero rejected",
			page: 0, size: 20,
			wantErr: true,
		},
		{
			name: "negative page rejected",
			page: -1, size: 20,
			wantErr: true,
		},
		{
			name: "size zero rejected",
			page: 1, size: 0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPageRequest(tt.page, tt.size, tt.sortBy, tt.sort, allowed)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req, err := BuildPageRequest(3, 25, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 50, req.Offset())
}

func TestPageRequestOrderClause(t *testing.T) {
	assert.Empty(t, PageRequest{}.OrderClause())
	assert.Equal(t, "ORDER BY email ASC", PageRequest{SortBy: "email"}.OrderClause())
	assert.Equal(t, "ORDER BY email DESC", PageRequest{SortBy: "email", Desc: true}.OrderClause())
}

func TestPages(t *testing.T) {
	assert.Equal(t, 1, Pages(0, 20))
	assert.Equal(t, 1, Pages(20, 20))
	assert.Equal(t, 2, Pages(21, 20))
	assert.Equal(t, 5, Pages(100, 20))
	assert.Equal(t, 1, Pages(10, 0))
}
