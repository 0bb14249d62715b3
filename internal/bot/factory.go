package bot

import (
	"fmt"
)

// NewBrain creates a brain for the given difficulty tier.
func NewBrain(difficulty string) (Brain, error) {
	switch difficulty {
	case DifficultyEasy:
		return newHeuristic(EasyTuning), nil
	case DifficultyMedium:
		return newHeuristic(MediumTuning), nil
	case DifficultyHard:
		return newHeuristic(HardTuning), nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty: %q", difficulty)
	}
}
