package profiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandharkardeep/minisocial/internal/profiles"
)

func TestRegistry_Add(t *testing.T) {
	r := profiles.NewRegistry()
	require.NoError(t, r.Add(profiles.User{ID: 7, Name: "Maria", Age: 30, City: "Lima"}))

	assert.ErrorIs(t, r.Add(profiles.User{ID: 8, Name: "Maria"}), profiles.ErrDuplicateName)
	assert.ErrorIs(t, r.Add(profiles.User{ID: 7, Name: "Other"}), profiles.ErrDuplicateID)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.NameExists("Maria"))
	assert.False(t, r.NameExists("maria"), "names are case-sensitive")

	u, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, "Lima", u.City)
	_, ok = r.Get(8)
	assert.False(t, ok)
}

func TestRegistry_Version(t *testing.T) {
	r := profiles.NewRegistry()
	assert.Zero(t, r.Version())
	require.NoError(t, r.Add(profiles.User{ID: 1, Name: "a"}))
	require.Error(t, r.Add(profiles.User{ID: 2, Name: "a"}))
	assert.Equal(t, uint64(1), r.Version(), "failed adds leave it alone")
	r.NextID()
	assert.Equal(t, uint64(1), r.Version())
}

func TestRegistry_TagsCopied(t *testing.T) {
	r := profiles.NewRegistry()
	tags := []string{"go"}
	require.NoError(t, r.Add(profiles.User{ID: 1, Name: "a", Tags: tags}))
	tags[0] = "rust"
	u, _ := r.Get(1)
	assert.Equal(t, []string{"go"}, u.Tags)
}

func TestRegistry_NextID(t *testing.T) {
	r := profiles.NewRegistry()
	assert.Equal(t, uint64(1), r.NextID())
	require.NoError(t, r.Add(profiles.User{ID: 41, Name: "x"}))
	assert.Equal(t, uint64(42), r.NextID())
	assert.Equal(t, uint64(43), r.NextID())
}

func TestRegistry_FindByName(t *testing.T) {
	r := profiles.NewRegistry()
	for i, n := range []string{"Carla", "carlos", "Ana", "MARCARLA"} {
		require.NoError(t, r.Add(profiles.User{ID: uint64(i + 1), Name: n}))
	}
	var names []string
	for _, u := range r.FindByName("CARL") {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Carla", "carlos", "MARCARLA"}, names)
	assert.Empty(t, r.FindByName("zed"))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"music", "go", "chess"}, profiles.SplitTags("music;go;;chess;"))
	assert.Empty(t, profiles.SplitTags(""))
}
