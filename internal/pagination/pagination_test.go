package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/pagination"
)

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 99, pagination.Params{Page: 100, Limit: 1}.Offset())
}

func TestParams_OffsetSaturates(t *testing.T) {
	huge := pagination.Params{Page: 100000000000000000, Limit: 100}
	assert.False(t, huge.InRange())
	assert.Equal(t, pagination.MaxOffset, huge.Offset())

	last := pagination.Params{Page: pagination.MaxOffset/100 + 1, Limit: 100}
	assert.True(t, last.InRange())
	assert.GreaterOrEqual(t, last.Offset(), 0)
	assert.LessOrEqual(t, last.Offset(), pagination.MaxOffset)

	assert.Empty(t, pagination.Window([]int{1, 2, 3}, huge))
}

func TestDefaults(t *testing.T) {
	p := pagination.Defaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		params    pagination.Params
		total     int64
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"no matches", pagination.Params{Page: 1, Limit: 10}, 0, 0, false, false},
		{"single partial page", pagination.Params{Page: 1, Limit: 10}, 3, 1, false, false},
		{"exact multiple", pagination.Params{Page: 1, Limit: 5}, 10, 2, true, false},
		{"last page", pagination.Params{Page: 2, Limit: 5}, 10, 2, false, true},
		{"middle page", pagination.Params{Page: 2, Limit: 3}, 10, 4, true, true},
		{"beyond last page", pagination.Params{Page: 9, Limit: 10}, 25, 3, false, true},
		{"limit one", pagination.Params{Page: 1, Limit: 1}, 7, 7, true, false},
		{"max limit", pagination.Params{Page: 1, Limit: 100}, 101, 2, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pagination.NewMeta(tt.params, tt.total)
			assert.Equal(t, tt.params.Page, m.CurrentPage)
			assert.Equal(t, tt.wantPages, m.TotalPages)
			assert.Equal(t, tt.total, m.TotalMatches)
			assert.Equal(t, tt.total, m.TotalStudents)
			assert.Equal(t, tt.wantNext, m.HasNext)
			assert.Equal(t, tt.wantPrev, m.HasPrev)
		})
	}
}

func TestNewMeta_TotalPagesIsCeil(t *testing.T) {
	for limit := 1; limit <= 100; limit += 7 {
		for total := int64(0); total <= 250; total += 13 {
			m := pagination.NewMeta(pagination.Params{Page: 1, Limit: limit}, total)

			want := int(total) / limit
			if int(total)%limit != 0 {
				want++
			}
			require.Equal(t, want, m.TotalPages, "limit=%d total=%d", limit, total)
		}
	}
}

func TestWindow(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, pagination.Window(items, pagination.Params{Page: 1, Limit: 5}))
	assert.Equal(t, []int{20, 21, 22}, pagination.Window(items, pagination.Params{Page: 5, Limit: 5}))

	beyond := pagination.Window(items, pagination.Params{Page: 6, Limit: 5})
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	assert.Empty(t, pagination.Window([]int{}, pagination.Defaults()))
}

func TestWindow_BoundsHoldForEveryPage(t *testing.T) {
	items := make([]int, 47)
	for i := range items {
		items[i] = i
	}

	for limit := 1; limit <= 100; limit++ {
		for page := 1; page <= 50; page++ {
			p := pagination.Params{Page: page, Limit: limit}
			got := pagination.Window(items, p)

			require.LessOrEqual(t, len(got), limit)
			if len(got) > 0 {
				first := got[0]
				require.GreaterOrEqual(t, first, page*limit-limit)
				require.Less(t, first, page*limit)
			}
		}
	}
}

func TestMatchCourse(t *testing.T) {
	assert.True(t, pagination.MatchCourse("Computer Science", "sci"))
	assert.True(t, pagination.MatchCourse("Computer Science", "COMPUTER"))
	assert.True(t, pagination.MatchCourse("Data Science", ""))
	assert.False(t, pagination.MatchCourse("Cybersecurity", "science"))
}
