package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/obweb/internal/oid"
)

func TestEvict_ClearsEveryIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.Consider(id(2), profile(2, "Alice")))
	require.NoError(t, s.Consider(id(3), profile(3, "Alice")))
	require.NoError(t, s.SetShortName(id(2), "al"))

	require.True(t, s.Evict(id(2)))

	assert.False(t, s.Contains(id(2)))
	assert.Equal(t, []oid.OID{id(3)}, s.LookupByName("Alice"))
	assert.Equal(t, []oid.OID{id(3)}, s.LookupFolded("alice"))
	_, ok := s.ShortName(id(2))
	assert.False(t, ok)
	require.NoError(t, s.checkInvariants())

	require.True(t, s.Evict(id(3)))
	assert.Empty(t, s.NamesWithPrefix("", 0))
	require.NoError(t, s.checkInvariants())
}

func TestSweep_PerTierTTL(t *testing.T) {
	clk := newFakeClock()
	s := New(WithTiers(2), WithTTLs(time.Minute, 0), WithClock(clk.Now))

	require.NoError(t, s.ConsiderPriority(id(2), profile(2, "a"), 0))
	require.NoError(t, s.ConsiderPriority(id(3), profile(3, "b"), 1))
	clk.Advance(30 * time.Second)
	require.NoError(t, s.ConsiderPriority(id(4), profile(4, "c"), 0))

	assert.Empty(t, s.Sweep(clk.Now()))

	clk.Advance(40 * time.Second)
	assert.Equal(t, []oid.OID{id(2)}, s.Sweep(clk.Now()))

	clk.Advance(time.Hour)
	assert.Equal(t, []oid.OID{id(4)}, s.Sweep(clk.Now()))
	assert.True(t, s.Contains(id(3)), "tier without a TTL never expires")
	require.NoError(t, s.checkInvariants())
}

func TestSweep_RefreshedEntrySurvives(t *testing.T) {
	clk := newFakeClock()
	s := New(WithTTLs(time.Minute), WithClock(clk.Now))
	require.NoError(t, s.Consider(id(2), profile(2, "a")))
	require.NoError(t, s.Consider(id(3), profile(3, "b")))

	clk.Advance(50 * time.Second)
	require.NoError(t, s.Consider(id(2), profile(2, "a")))
	clk.Advance(20 * time.Second)

	assert.Equal(t, []oid.OID{id(3)}, s.Sweep(clk.Now()))
	assert.True(t, s.Contains(id(2)))
}

func TestMaxObjects_EvictsLowestTierOldest(t *testing.T) {
	clk := newFakeClock()
	s := New(WithTiers(2), WithMaxObjects(2), WithClock(clk.Now))

	require.NoError(t, s.ConsiderPriority(id(2), profile(2, "low-old"), 0))
	clk.Advance(time.Second)
	require.NoError(t, s.ConsiderPriority(id(3), profile(3, "high"), 1))
	clk.Advance(time.Second)
	require.NoError(t, s.ConsiderPriority(id(4), profile(4, "new"), 1))

	assert.False(t, s.Contains(id(2)))
	assert.True(t, s.Contains(id(3)))
	assert.True(t, s.Contains(id(4)))

	clk.Advance(time.Second)
	require.NoError(t, s.ConsiderPriority(id(5), profile(5, "newer"), 0))
	assert.False(t, s.Contains(id(3)), "oldest of the only non-empty tier goes")
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.ConsiderPriority(id(5), profile(5, "newer"), 0))
	assert.Equal(t, 2, s.Len(), "refresh does not evict")
	require.NoError(t, s.checkInvariants())
}
