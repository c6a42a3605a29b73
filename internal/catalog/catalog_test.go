package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOrderAndContents(t *testing.T) {
	c := Default()
	require.Equal(t, []string{"number-trace", "letter-trace"}, c.IDs())

	num, err := c.Lookup("number-trace")
	require.NoError(t, err)
	require.Len(t, num.Items, 10)
	require.Equal(t, "0", num.Items[0])
	require.True(t, num.HasModel())

	letters, err := c.Lookup("letter-trace")
	require.NoError(t, err)
	require.Len(t, letters.Items, 26)
	require.False(t, letters.HasModel())
}

func TestLookupReturnsCopies(t *testing.T) {
	c := Default()
	g, err := c.Lookup("number-trace")
	require.NoError(t, err)
	g.Items[0] = "mutated"

	again, err := c.Lookup("number-trace")
	require.NoError(t, err)
	require.Equal(t, "0", again.Items[0])

	all := c.Games()
	all[0].Items[1] = "mutated"
	again, _ = c.Lookup("number-trace")
	require.Equal(t, "1", again.Items[1])
}

func TestLookupUnknownSuggestsClosest(t *testing.T) {
	c := Default()
	_, err := c.Lookup("numbr-trace")
	var unknown *UnknownGameError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "numbr-trace", unknown.ID)
	require.Equal(t, "number-trace", unknown.Suggestion)
	require.Contains(t, err.Error(), "did you mean")

	_, err = c.Lookup("chess")
	require.True(t, errors.As(err, &unknown))
	require.Empty(t, unknown.Suggestion)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ``},
		{name: "missing_id", data: "[[game]]\nitems = [\"A\"]\n"},
		{name: "no_items", data: "[[game]]\nid = \"a\"\n"},
		{name: "blank_item", data: "[[game]]\nid = \"a\"\nitems = [\" \"]\n"},
		{name: "duplicate", data: "[[game]]\nid = \"a\"\nitems = [\"A\"]\n[[game]]\nid = \"a\"\nitems = [\"B\"]\n"},
		{name: "bad_toml", data: "[[game]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestParseDefaultsNameToID(t *testing.T) {
	c, err := Parse([]byte("[[game]]\nid = \"shapes\"\nitems = [\"O\"]\n"))
	require.NoError(t, err)
	g, err := c.Lookup("shapes")
	require.NoError(t, err)
	require.Equal(t, "shapes", g.Name)
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.toml")
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().IDs(), c.IDs())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "number-trace")
}

func TestLoadEmptyPathUsesBuiltIn(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
}
