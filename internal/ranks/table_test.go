package ranks

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor_Scenarios(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name     string
		amount   float64
		expected Rank
	}{
		{"below floor", 50, Bronze},
		{"negative", -10, Bronze},
		{"zero", 0, Bronze},
		{"exact bronze", 100, Bronze},
		{"just under silver", 499.99, Bronze},
		{"exact silver", 500, Silver},
		{"exact gold", 1500, Gold},
		{"mid platinum", 8500, Platinum},
		{"exact diamond", 15000, Diamond},
		{"far above diamond", 20000, Diamond},
		{"nan", math.NaN(), Bronze},
		{"negative infinity", math.Inf(-1), Bronze},
		{"positive infinity", math.Inf(1), Diamond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.TierFor(tt.amount).Rank)
		})
	}
}

func TestTierFor_IsHighestMatchingTier(t *testing.T) {
	table := DefaultTable()
	for amount := 0.0; amount <= 20000; amount += 37.5 {
		tier := table.TierFor(amount)
		if amount >= table.tiers[0].MinAmount {
			assert.LessOrEqual(t, tier.MinAmount, amount)
		}
		for _, other := range table.Tiers() {
			if other.MinAmount > tier.MinAmount {
				assert.Greater(t, other.MinAmount, amount, "tier %s also matches %v", other.Rank, amount)
			}
		}
	}
}

func TestGoldScenario(t *testing.T) {
	table := DefaultTable()

	current := table.TierFor(1500)
	assert.Equal(t, "gold", current.Rank.String())

	next, ok := table.NextTierAfter(1500)
	require.True(t, ok)
	assert.Equal(t, Platinum, next.Rank)
	assert.Equal(t, 5000.0, next.MinAmount)

	assert.Equal(t, 0.0, table.ProgressToNext(1500, current))
	assert.InDelta(t, 50.0, table.ProgressToNext(3250, current), 1e-9)
}

func TestDiamondScenario(t *testing.T) {
	table := DefaultTable()

	current := table.TierFor(20000)
	assert.Equal(t, Diamond, current.Rank)

	_, ok := table.NextTierAfter(20000)
	assert.False(t, ok)
	assert.Equal(t, 100.0, table.ProgressToNext(20000, current))
	assert.Equal(t, 100.0, table.ProgressToNext(15000, table.TierFor(15000)))
}

func TestProgressToNext_MonotonicWithinBracket(t *testing.T) {
	table := DefaultTable()
	tiers := table.Tiers()

	for i := 0; i < len(tiers)-1; i++ {
		lo, hi := tiers[i].MinAmount, tiers[i+1].MinAmount
		prev := -1.0
		for a := lo; a < hi; a += (hi - lo) / 50 {
			p := table.ProgressToNext(a, table.TierFor(a))
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
			assert.GreaterOrEqual(t, p, prev, "progress dropped at %v", a)
			prev = p
		}
	}
}

func TestProgressToNext_BelowFloorAndNaN(t *testing.T) {
	table := DefaultTable()
	bronze := table.TierFor(0)

	assert.Equal(t, 0.0, table.ProgressToNext(50, bronze))
	assert.Equal(t, 0.0, table.ProgressToNext(math.NaN(), bronze))
}

func TestStanding(t *testing.T) {
	table := DefaultTable()

	s := table.Standing(750)
	assert.Equal(t, Silver, s.Tier.Rank)
	require.NotNil(t, s.Next)
	assert.Equal(t, Gold, s.Next.Rank)
	assert.Equal(t, 750.0, s.Remaining)
	assert.InDelta(t, 25.0, s.Progress, 1e-9)

	top := table.Standing(25000)
	assert.Nil(t, top.Next)
	assert.Equal(t, 100.0, top.Progress)
	assert.Zero(t, top.Remaining)
}

func TestStanding_NotANumber(t *testing.T) {
	table := DefaultTable()

	for _, amount := range []float64{math.NaN(), math.Inf(-1)} {
		s := table.Standing(amount)
		assert.Equal(t, Bronze, s.Tier.Rank)
		require.NotNil(t, s.Next)
		assert.Equal(t, Bronze, s.Next.Rank)
		assert.Equal(t, 100.0, s.Remaining)
		assert.Zero(t, s.Progress)

		_, err := json.Marshal(s)
		assert.NoError(t, err)
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tiers []Tier
	}{
		{"empty", nil},
		{"unsorted", []Tier{{Rank: Silver, MinAmount: 500}, {Rank: Bronze, MinAmount: 100}}},
		{"duplicate minimum", []Tier{{Rank: Bronze, MinAmount: 100}, {Rank: Silver, MinAmount: 100}}},
		{"duplicate rank", []Tier{{Rank: Bronze, MinAmount: 100}, {Rank: Bronze, MinAmount: 200}}},
		{"negative minimum", []Tier{{Rank: Bronze, MinAmount: -1}}},
		{"unknown rank", []Tier{{Rank: Rank(42), MinAmount: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tiers)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestNewTable_FillsDisplayFromRank(t *testing.T) {
	table, err := NewTable([]Tier{{Rank: Gold, MinAmount: 0, Color: "ignored"}})
	require.NoError(t, err)

	tier := table.TierFor(10)
	assert.Equal(t, "Gold", tier.Name)
	assert.Equal(t, "text-yellow-400", tier.Color)
	assert.Equal(t, "Crown", tier.Icon)
}

func TestRankMetadataIsComplete(t *testing.T) {
	for _, r := range All() {
		assert.NotEmpty(t, r.String())
		assert.NotEmpty(t, r.Title())
		assert.NotEmpty(t, r.Color())
		assert.NotEmpty(t, r.Icon())
	}
}

func TestParseRank(t *testing.T) {
	r, err := ParseRank("  PLATINUM ")
	require.NoError(t, err)
	assert.Equal(t, Platinum, r)

	_, err = ParseRank("mythril")
	assert.ErrorIs(t, err, ErrUnknownRank)
}

func TestRankJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Rank Rank `json:"rank"`
	}{Diamond})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":"diamond"}`, string(out))

	var in struct {
		Rank Rank `json:"rank"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"rank":"silver"}`), &in))
	assert.Equal(t, Silver, in.Rank)

	assert.Error(t, json.Unmarshal([]byte(`{"rank":"wood"}`), &in))
}
