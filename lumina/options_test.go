package lumina

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsFromMapNil(t *testing.T) {
	assert.Equal(t, QueryOptions{}, OptionsFromMap(nil))
}

func TestOptionsFromMapPerPageAlias(t *testing.T) {
	// perPage wins over per_page when both are supplied.
	opts := OptionsFromMap(map[string]any{
		"per_page": 10,
		"perPage":  20,
	})
	assert.Equal(t, 20, opts.PerPage)

	opts = OptionsFromMap(map[string]any{"per_page": 10})
	assert.Equal(t, 10, opts.PerPage)
}

func TestOptionsFromMapCoercions(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"page":    "3",         // numeric string
		"perPage": float64(25), // decoded JSON number
		"sort":    "-created_at",
		"search":  "hello",
		"includes": []any{"author", "comments.author"},
		"fields":   []string{"id", "title"},
	})
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 25, opts.PerPage)
	assert.Equal(t, "-created_at", opts.Sort)
	assert.Equal(t, "hello", opts.Search)
	assert.Equal(t, []string{"author", "comments.author"}, opts.Includes)
	assert.Equal(t, []string{"id", "title"}, opts.Fields)
}

func TestOptionsFromMapFiltersSortedByKey(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"filters": map[string]any{
			"status":    "published",
			"author_id": 1,
		},
	})
	assert.Equal(t, []Filter{
		{Field: "author_id", Value: 1},
		{Field: "status", Value: "published"},
	}, opts.Filters)
}

func TestOptionsFromMapIgnoresGarbage(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"page":    "not-a-number",
		"perPage": struct{}{},
		"sort":    42,
	})
	assert.Equal(t, QueryOptions{}, opts)
}
