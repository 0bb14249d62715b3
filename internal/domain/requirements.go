package domain

// RoundRequirement is the contract a player must satisfy before going down
// in a given round: how many sets and runs, at what minimum sizes.
type RoundRequirement struct {
	Round      int    `json:"round"`
	Sets       int    `json:"sets"`
	MinSetSize int    `json:"min_set_size"`
	Runs       int    `json:"runs"`
	MinRunSize int    `json:"min_run_size"`
	Label      string `json:"label"`
}

// TotalRounds is the fixed length of a game.
const TotalRounds = 7

// requirements is configuration data, not derived: the seven contracts
// alternate between pure sets, pure runs, and mixes to force variety.
var requirements = [TotalRounds]RoundRequirement{
	{Round: 1, Sets: 2, MinSetSize: 3, Runs: 0, MinRunSize: 0, Label: "two sets of 3"},
	{Round: 2, Sets: 1, MinSetSize: 3, Runs: 1, MinRunSize: 4, Label: "one set of 3, one run of 4"},
	{Round: 3, Sets: 0, MinSetSize: 0, Runs: 2, MinRunSize: 4, Label: "two runs of 4"},
	{Round: 4, Sets: 3, MinSetSize: 3, Runs: 0, MinRunSize: 0, Label: "three sets of 3"},
	{Round: 5, Sets: 2, MinSetSize: 3, Runs: 1, MinRunSize: 4, Label: "two sets of 3, one run of 4"},
	{Round: 6, Sets: 1, MinSetSize: 3, Runs: 2, MinRunSize: 4, Label: "one set of 3, two runs of 4"},
	{Round: 7, Sets: 0, MinSetSize: 0, Runs: 3, MinRunSize: 4, Label: "three runs of 4"},
}

// RequirementForRound returns the contract for round 1..7.
func RequirementForRound(round int) RoundRequirement {
	if round < 1 || round > TotalRounds {
		return RoundRequirement{}
	}
	return requirements[round-1]
}

// Satisfies reports whether the laid melds meet the contract: enough sets at
// the minimum set size and enough runs at the minimum run size, counted
// across the whole meld list.
func (r RoundRequirement) Satisfies(melds []Meld) bool {
	sets, runs := 0, 0
	for _, m := range melds {
		switch m.Type {
		case MeldSet:
			if len(m.Cards) >= r.MinSetSize {
				sets++
			}
		case MeldRun:
			if len(m.Cards) >= r.MinRunSize {
				runs++
			}
		}
	}
	return sets >= r.Sets && runs >= r.Runs
}

// MissingCounts returns how many qualifying sets and runs the melds are
// short of the contract, for failure reporting.
func (r RoundRequirement) MissingCounts(melds []Meld) (setsShort, runsShort int) {
	sets, runs := 0, 0
	for _, m := range melds {
		switch m.Type {
		case MeldSet:
			if len(m.Cards) >= r.MinSetSize {
				sets++
			}
		case MeldRun:
			if len(m.Cards) >= r.MinRunSize {
				runs++
			}
		}
	}
	if sets < r.Sets {
		setsShort = r.Sets - sets
	}
	if runs < r.Runs {
		runsShort = r.Runs - runs
	}
	return setsShort, runsShort
}
