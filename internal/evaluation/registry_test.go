package evaluation

import (
	"testing"

	"github.com/spboyer/napr/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	var nilReg *Registry
	assert.Equal(t, 0, nilReg.Len())
	assert.Empty(t, nilReg.Names())
	_, ok := nilReg.Get("x")
	assert.False(t, ok)

	a, b := newKNN(t, 1), newKNN(t, 5)
	r := NewRegistry().Add("first", a).Add("second", newNB(t)).Add("first", b)
	assert.Equal(t, []string{"first", "second"}, r.Names())

	got, ok := r.Get("first")
	require.True(t, ok)
	assert.Same(t, b, got)

	entries := r.Entries()
	entries[0].Name = "mutated"
	assert.Equal(t, "first", r.Names()[0])
}

func TestFromMapSortsNames(t *testing.T) {
	r := FromMap(map[string]classifier.Classifier{
		"zeta":  newNB(t),
		"alpha": newKNN(t, 1),
		"mid":   newNB(t),
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestSingleUsesTypeName(t *testing.T) {
	d, err := classifier.NewDummyClassifier(classifier.DummyParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"DummyClassifier"}, Single(d).Names())
}
