package ranks

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRank is returned when a rank name is not part of the fixed rank set.
var ErrUnknownRank = errors.New("unknown rank")

// Rank is one of the fixed donor ranks, ordered from lowest to highest.
type Rank int

const (
	Bronze Rank = iota
	Silver
	Gold
	Platinum
	Diamond

	rankCount
)

type display struct {
	name  string
	title string
	color string
	icon  string
}

var displays = [...]display{
	Bronze:   {name: "bronze", title: "Bronze", color: "text-amber-600", icon: "Award"},
	Silver:   {name: "silver", title: "Silver", color: "text-gray-400", icon: "Medal"},
	Gold:     {name: "gold", title: "Gold", color: "text-yellow-400", icon: "Crown"},
	Platinum: {name: "platinum", title: "Platinum", color: "text-purple-400", icon: "Star"},
	Diamond:  {name: "diamond", title: "Diamond", color: "text-cyan-400", icon: "Gem"},
}

// displays must hold exactly one entry per rank.
var (
	_ [len(displays) - int(rankCount)]struct{}
	_ [int(rankCount) - len(displays)]struct{}
)

// All returns every rank in ascending order.
func All() []Rank {
	out := make([]Rank, 0, rankCount)
	for r := Bronze; r < rankCount; r++ {
		out = append(out, r)
	}
	return out
}

func (r Rank) Valid() bool {
	return r >= Bronze && r < rankCount
}

// String returns the lowercase rank name, e.g. "gold".
func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rank(%d)", int(r))
	}
	return displays[r].name
}

func (r Rank) Title() string { return displays[r].title }
func (r Rank) Color() string { return displays[r].color }
func (r Rank) Icon() string  { return displays[r].icon }

// ParseRank resolves a rank by name, ignoring case.
func ParseRank(name string) (Rank, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for r := Bronze; r < rankCount; r++ {
		if displays[r].name == needle {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRank, name)
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRank, int(r))
	}
	return []byte(displays[r].name), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
