package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	item, err := Parse("category:eq:spices")
	require.NoError(t, err)
	assert.Equal(t, Item{Field: "category", Operator: Equal, Value: "spices"}, item)

	item, err = Parse("status:in:active,inactive")
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "inactive"}, item.Value)

	item, err = Parse("location:null")
	require.NoError(t, err)
	assert.Nil(t, item.Value)

	// value may itself contain colons
	item, err = Parse("notes:contains:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", item.Value)
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{"", "name", "name:like:x", "name:eq"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}
