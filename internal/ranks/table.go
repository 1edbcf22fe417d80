package ranks

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTable = errors.New("invalid rank table")

// Tier is a named donation bracket. Name, Color and Icon are derived from Rank.
type Tier struct {
	Rank      Rank     `json:"rank"`
	Name      string   `json:"name"`
	MinAmount float64  `json:"min_amount"`
	Color     string   `json:"color"`
	Icon      string   `json:"icon"`
	Benefits  []string `json:"benefits"`
}

// Standing describes where an amount sits in the table.
type Standing struct {
	Tier      Tier    `json:"tier"`
	Next      *Tier   `json:"next,omitempty"`
	Progress  float64 `json:"progress"`
	Remaining float64 `json:"remaining"`
}

// Table is an immutable list of tiers sorted ascending by MinAmount.
type Table struct {
	tiers []Tier
}

// NewTable validates and builds a table. Tiers must be non-empty, strictly
// ascending by MinAmount, non-negative, and use each rank at most once.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	seen := make(map[Rank]bool, len(tiers))
	out := make([]Tier, 0, len(tiers))
	for i, t := range tiers {
		if !t.Rank.Valid() {
			return nil, fmt.Errorf("%w: tier %d: %w", ErrInvalidTable, i, ErrUnknownRank)
		}
		if seen[t.Rank] {
			return nil, fmt.Errorf("%w: rank %s listed twice", ErrInvalidTable, t.Rank)
		}
		seen[t.Rank] = true
		if t.MinAmount < 0 || math.IsNaN(t.MinAmount) || math.IsInf(t.MinAmount, 0) {
			return nil, fmt.Errorf("%w: rank %s has invalid minimum %v", ErrInvalidTable, t.Rank, t.MinAmount)
		}
		if i > 0 && t.MinAmount <= out[i-1].MinAmount {
			return nil, fmt.Errorf("%w: rank %s minimum %v is not above %v", ErrInvalidTable, t.Rank, t.MinAmount, out[i-1].MinAmount)
		}
		t.Name = t.Rank.Title()
		t.Color = t.Rank.Color()
		t.Icon = t.Rank.Icon()
		t.Benefits = append([]string(nil), t.Benefits...)
		out = append(out, t)
	}
	return &Table{tiers: out}, nil
}

var defaultTiers = []Tier{
	{Rank: Bronze, MinAmount: 100, Benefits: []string{"Chat badge", "Emote access"}},
	{Rank: Silver, MinAmount: 500, Benefits: []string{"Chat priority", "Custom emotes"}},
	{Rank: Gold, MinAmount: 1500, Benefits: []string{"VIP status", "Private channel"}},
	{Rank: Platinum, MinAmount: 5000, Benefits: []string{"Moderator rights", "Personal games"}},
	{Rank: Diamond, MinAmount: 15000, Benefits: []string{"All privileges", "Admin rights"}},
}

// DefaultTable returns the stock bronze..diamond table.
func DefaultTable() *Table {
	t, err := NewTable(defaultTiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Tiers returns a copy of the tiers in ascending order.
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Tier returns the tier for a rank, if the table contains it.
func (t *Table) Tier(r Rank) (Tier, bool) {
	for _, tier := range t.tiers {
		if tier.Rank == r {
			return tier, true
		}
	}
	return Tier{}, false
}

// TierFor returns the highest tier whose MinAmount <= amount. Amounts below
// every threshold, negative amounts and NaN resolve to the lowest tier.
func (t *Table) TierFor(amount float64) Tier {
	amount = orZero(amount)
	current := t.tiers[0]
	for _, tier := range t.tiers[1:] {
		if tier.MinAmount > amount {
			break
		}
		current = tier
	}
	return current
}

// NextTierAfter returns the lowest tier whose MinAmount > amount. NaN and
// -Inf are looked up as zero.
func (t *Table) NextTierAfter(amount float64) (Tier, bool) {
	amount = orZero(amount)
	for _, tier := range t.tiers {
		if tier.MinAmount > amount {
			return tier, true
		}
	}
	return Tier{}, false
}

// ProgressToNext interpolates amount between current and the next tier,
// clamped to [0,100]. It is 100 when there is no next tier, and 0 while amount
// is still below current's own threshold.
func (t *Table) ProgressToNext(amount float64, current Tier) float64 {
	if math.IsNaN(amount) || amount < current.MinAmount {
		return 0
	}
	next, ok := t.NextTierAfter(amount)
	if !ok {
		return 100
	}
	span := next.MinAmount - current.MinAmount
	if span <= 0 {
		return 100
	}
	progress := 100 * (amount - current.MinAmount) / span
	if math.IsNaN(progress) {
		return 0
	}
	return math.Max(0, math.Min(100, progress))
}

// Standing resolves tier, next tier and progress for amount in one call.
func (t *Table) Standing(amount float64) Standing {
	amount = orZero(amount)
	current := t.TierFor(amount)
	s := Standing{
		Tier:     current,
		Progress: t.ProgressToNext(amount, current),
	}
	if next, ok := t.NextTierAfter(amount); ok {
		s.Next = &next
		s.Remaining = next.MinAmount - amount
	}
	return s
}

// orZero looks up NaN and -Inf as zero.
func orZero(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, -1) {
		return 0
	}
	return amount
}
