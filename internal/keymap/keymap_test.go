package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

func newKeymap(t *testing.T) *Keymap {
	t.Helper()
	km, err := New(4, 3)
	require.NoError(t, err)
	return km
}

func TestNewRejectsEmptyGrid(t *testing.T) {
	_, err := New(0, 8)
	assert.Error(t, err)
	_, err = New(25, -1)
	assert.Error(t, err)
}

func TestResolveFallsBackToSubsetLayers(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(1, 1, keys.Layer1, keys.A))
	require.NoError(t, km.Set(1, 1, keys.Layer3, keys.B))

	key, layer := km.Resolve(1, 1, keys.Layer1)
	assert.Equal(t, keys.A, key)
	assert.Equal(t, keys.Layer1, layer)

	key, layer = km.Resolve(1, 1, keys.Layer3)
	assert.Equal(t, keys.B, key)
	assert.Equal(t, keys.Layer3, layer)

	// Layer2 does not contain Layer3's bit, so it falls through to Layer1.
	key, layer = km.Resolve(1, 1, keys.Layer2)
	assert.Equal(t, keys.A, key)
	assert.Equal(t, keys.Layer1, layer)

	// Layer5 is Layer2|Layer3 and picks up the Layer3 assignment.
	key, layer = km.Resolve(1, 1, keys.Layer5)
	assert.Equal(t, keys.B, key)
	assert.Equal(t, keys.Layer3, layer)
}

func TestResolveUnassigned(t *testing.T) {
	km := newKeymap(t)
	key, layer := km.Resolve(0, 0, keys.Layer8)
	assert.Equal(t, keys.Undefined, key)
	assert.Equal(t, keys.Layer1, layer)

	key, layer = km.Resolve(10, 0, keys.Layer1)
	assert.Equal(t, keys.Undefined, key)
	assert.Equal(t, keys.Layer1, layer)
}

func TestResolveOnlyReturnsSubsetLayers(t *testing.T) {
	km := newKeymap(t)
	// Fill every layer of one cell with a distinct key.
	for l := 0; l < keys.LayerCount; l++ {
		require.NoError(t, km.Set(2, 2, keys.Layer(l), keys.N0+keys.Code(l)))
	}
	// Sparse cell: only the odd layers are set.
	for l := 1; l < keys.LayerCount; l += 2 {
		require.NoError(t, km.Set(0, 1, keys.Layer(l), keys.Q+keys.Code(l)))
	}

	for col := 0; col < km.Width(); col++ {
		for row := 0; row < km.Height(); row++ {
			for m := 0; m < keys.LayerCount; m++ {
				mask := keys.Layer(m)
				_, found := km.Resolve(col, row, mask)
				assert.True(t, mask.Contains(found), "col %d row %d mask %s found %s", col, row, mask, found)
			}
		}
	}

	for m := 0; m < keys.LayerCount; m++ {
		key, found := km.Resolve(2, 2, keys.Layer(m))
		assert.Equal(t, keys.Layer(m), found)
		assert.Equal(t, keys.N0+keys.Code(m), key)
	}
}

func TestSetRejectsModifierOnUpperLayer(t *testing.T) {
	km := newKeymap(t)
	for _, mod := range keys.Modifiers {
		err := km.Set(0, 0, keys.Layer2, mod)
		require.ErrorIs(t, err, ErrModifierOnLayer)
	}
	assert.Equal(t, keys.Undefined, km.Get(0, 0, keys.Layer2))

	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.Mod1))
	assert.Equal(t, keys.Mod1, km.Get(0, 0, keys.Layer1))
}

func TestSetRejectsKeyAboveModifier(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.Mod2))

	// Layer2 (mask 1) checks mask 0, which resolves to Mod2.
	err := km.Set(0, 0, keys.Layer2, keys.A)
	require.ErrorIs(t, err, ErrModifierBelow)

	// Layer3 (mask 2) checks mask 1, which falls back to Mod2 on Layer1.
	err = km.Set(0, 0, keys.Layer3, keys.A)
	require.ErrorIs(t, err, ErrModifierBelow)
	assert.Equal(t, keys.Undefined, km.Get(0, 0, keys.Layer3))
}

func TestSetRejectsModifierUnderAssignedLayers(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(0, 0, keys.Layer2, keys.X))

	err := km.Set(0, 0, keys.Layer1, keys.Mod1)
	require.ErrorIs(t, err, ErrKeysAbove)
	assert.Equal(t, keys.Undefined, km.Get(0, 0, keys.Layer1))

	require.NoError(t, km.Set(0, 0, keys.Layer8, keys.Blocker))
	require.NoError(t, km.Set(0, 0, keys.Layer2, keys.Undefined))
	require.ErrorIs(t, km.Set(0, 0, keys.Layer1, keys.Mod2), ErrKeysAbove, "a blocker counts as assigned")

	require.NoError(t, km.Set(0, 0, keys.Layer8, keys.Undefined))
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.Mod2))
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.A), "non-modifiers are unaffected")
}

func TestSetOnlyChecksTheLayerBelow(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(1, 0, keys.Layer1, keys.A))
	require.NoError(t, km.Set(1, 0, keys.Layer2, keys.B))
	// mask 3 checks mask 2, which resolves to A on Layer1.
	require.NoError(t, km.Set(1, 0, keys.Layer5, keys.C))
	assert.Equal(t, keys.C, km.Get(1, 0, keys.Layer5))
}

func TestSetOutOfRange(t *testing.T) {
	km := newKeymap(t)
	assert.ErrorIs(t, km.Set(-1, 0, keys.Layer1, keys.A), ErrOutOfRange)
	assert.ErrorIs(t, km.Set(0, 3, keys.Layer1, keys.A), ErrOutOfRange)
	assert.ErrorIs(t, km.Set(0, 0, keys.Layer(8), keys.A), ErrOutOfRange)
}

func TestCloneIsIndependent(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.A))
	c := km.Clone()
	assert.True(t, km.Equal(c))

	require.NoError(t, c.Set(0, 0, keys.Layer1, keys.B))
	assert.False(t, km.Equal(c))
	assert.Equal(t, keys.A, km.Get(0, 0, keys.Layer1))
}

func TestValidate(t *testing.T) {
	km := newKeymap(t)
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.A))
	require.NoError(t, km.Set(1, 0, keys.Layer1, keys.MouseTask))
	require.NoError(t, km.Set(2, 0, keys.Layer1, keys.Mod1))

	err := km.Validate(func(c keys.Code) bool { return c != keys.MouseTask })
	require.ErrorIs(t, err, ErrUnsupportedKey)
	assert.Contains(t, err.Error(), "MouseTask")

	assert.NoError(t, km.Validate(func(keys.Code) bool { return true }))
}

func TestDefaultLayout(t *testing.T) {
	km, err := Default(25, 8)
	require.NoError(t, err)

	key, _ := km.Resolve(1, 4, keys.Layer1)
	assert.Equal(t, keys.A, key)
	key, _ = km.Resolve(0, 1, keys.Layer1)
	assert.Equal(t, keys.Mod1, key)
	key, _ = km.Resolve(7, 4, keys.Layer2)
	assert.Equal(t, keys.Down, key)
	key, _ = km.Resolve(8, 4, keys.Layer3)
	assert.Equal(t, keys.NumPad5, key)

	small, err := Default(5, 2)
	require.NoError(t, err)
	key, _ = small.Resolve(1, 1, keys.Layer1)
	assert.Equal(t, keys.F1, key)
}
