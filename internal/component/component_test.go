package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchy_Registration(t *testing.T) {
	h := NewHierarchy("model")
	require.NotNil(t, h.Root())
	assert.False(t, h.Root().IsConcrete())

	species := h.Abstract("species", nil)
	producer := h.Concrete("producer", species)

	assert.Equal(t, h.Root(), species.Parent())
	assert.Equal(t, species, producer.Parent())
	assert.True(t, producer.IsConcrete())

	got, ok := h.Lookup("producer")
	require.True(t, ok)
	assert.Equal(t, producer, got)

	_, ok = h.Lookup("missing")
	assert.False(t, ok)
}

func TestHierarchy_RegistrationErrors(t *testing.T) {
	t.Run("duplicate name panics", func(t *testing.T) {
		h := NewHierarchy("model")
		h.Concrete("x", nil)
		assert.Panics(t, func() { h.Concrete("x", nil) })
	})

	t.Run("concrete parent panics", func(t *testing.T) {
		h := NewHierarchy("model")
		x := h.Concrete("x", nil)
		assert.Panics(t, func() { h.Concrete("y", x) })
	})

	t.Run("extending an abstract type panics", func(t *testing.T) {
		h := NewHierarchy("model")
		a := h.Abstract("a", nil)
		assert.Panics(t, func() { h.Extend(a) })
	})
}

func TestType_Satisfies(t *testing.T) {
	h := NewHierarchy("model")
	species := h.Abstract("species", nil)
	plant := h.Abstract("plant", species)
	producer := h.Concrete("producer", plant)
	other := h.Concrete("other", nil)

	assert.True(t, producer.Satisfies(producer))
	assert.True(t, producer.Satisfies(plant))
	assert.True(t, producer.Satisfies(species))
	assert.True(t, producer.Satisfies(h.Root()))
	assert.False(t, producer.Satisfies(other))
	assert.False(t, species.Satisfies(producer), "an ancestor does not satisfy its descendant")
}

func TestConflicting(t *testing.T) {
	h := NewHierarchy("model")
	topology := h.Abstract("topology", nil)
	foodweb := h.Concrete("foodweb", topology)
	cascade := h.Concrete("cascade", topology)
	chain := h.Concrete("chain", nil, ConflictsWith(topology))
	neutral := h.Concrete("neutral", nil)

	t.Run("declaration matches through an abstract ancestor", func(t *testing.T) {
		declarer, declared, ok := Conflicting(chain, foodweb)
		require.True(t, ok)
		assert.Equal(t, chain, declarer)
		assert.Equal(t, topology, declared)
	})

	t.Run("the check is symmetric", func(t *testing.T) {
		declarer, _, ok := Conflicting(cascade, chain)
		require.True(t, ok)
		assert.Equal(t, chain, declarer, "the declaration side is reported even when given second")
	})

	t.Run("unrelated types do not conflict", func(t *testing.T) {
		_, _, ok := Conflicting(neutral, foodweb)
		assert.False(t, ok)
	})
}

func TestRequirements(t *testing.T) {
	h := NewHierarchy("model")
	nutrients := h.Concrete("nutrients", nil)
	producer := h.Concrete("producer", nil,
		Requires(nutrients, "producers draw from the nutrient pool"))

	reqs := producer.Requirements()
	require.Len(t, reqs, 1)
	assert.Equal(t, nutrients, reqs[0].Target)
	assert.Equal(t, "producers draw from the nutrient pool", reqs[0].Reason)
}

func TestCheckf(t *testing.T) {
	err := Checkf("rate %d out of range", 42)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "rate 42 out of range", ce.Message)
}
