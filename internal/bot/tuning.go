package bot

// Difficulty labels match the values carried in bot identity metadata.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Tuning holds the threshold and pacing knobs that separate the difficulty
// tiers. Every tier runs the same heuristic; only these numbers differ.
type Tuning struct {
	// PickupThreshold is the usefulness a discard top must reach before the
	// bot prefers it over a blind stock draw.
	PickupThreshold float64
	// BuyThreshold is the usefulness a contested discard must reach before
	// the bot spends a buy token on it.
	BuyThreshold float64
	// ExhaustionPenalty scales how hard seen copies of a rank discount a
	// card's perceived set potential.
	ExhaustionPenalty float64
	// MinActDelayMs/MaxActDelayMs bound the simulated thinking pause before
	// each bot action.
	MinActDelayMs int
	MaxActDelayMs int
}

// EasyTuning buys rarely and barely looks at the discard pile.
var EasyTuning = Tuning{
	PickupThreshold:   2.5,
	BuyThreshold:      3.0,
	ExhaustionPenalty: 0,
	MinActDelayMs:     600,
	MaxActDelayMs:     1400,
}

// MediumTuning takes clearly useful discards and pays for strong buys.
var MediumTuning = Tuning{
	PickupThreshold:   1.5,
	BuyThreshold:      2.0,
	ExhaustionPenalty: 0.5,
	MinActDelayMs:     900,
	MaxActDelayMs:     2000,
}

// TuningFor maps a difficulty label to its tuning, defaulting to medium for
// unknown labels.
func TuningFor(difficulty string) Tuning {
	switch difficulty {
	case DifficultyEasy:
		return EasyTuning
	case DifficultyHard:
		return HardTuning
	default:
		return MediumTuning
	}
}

// HardTuning chases marginal cards and discounts dead ranks aggressively.
var HardTuning = Tuning{
	PickupThreshold:   1.0,
	BuyThreshold:      1.5,
	ExhaustionPenalty: 1.5,
	MinActDelayMs:     1100,
	MaxActDelayMs:     2400,
}
