package domain

import (
	"errors"
	"fmt"
)

// Rule violations are recoverable: the action is rejected, state is left
// unchanged (or reverted), and one of these is returned to the caller.
var (
	ErrNotPlaying       = errors.New("game not in progress")
	ErrUnknownPlayer    = errors.New("player not in game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyDrawn     = errors.New("already drawn this turn")
	ErrNotDrawnYet      = errors.New("draw or pick up before this action")
	ErrNoCardsAvailable = errors.New("no cards available")
	ErrEmptyDiscard     = errors.New("discard pile is empty")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrInvalidMeld      = errors.New("cards do not form the claimed meld")
	ErrNotGoneDown      = errors.New("must go down before laying off")
	ErrInvalidLayOff    = errors.New("card does not extend the target meld")
	ErrNoBuysRemaining  = errors.New("no buys remaining this round")
	ErrBuyWindowOpen    = errors.New("buy window is open")
	ErrBuyWindowClosed  = errors.New("buy window is not open")
	ErrNotEligibleToBuy = errors.New("not eligible to buy this discard")
)

// RequirementError reports which part of the round contract blocked a go-out
// attempt. It satisfies errors.Is(err, ErrRequirementNotMet).
type RequirementError struct {
	Round     int
	SetsShort int
	RunsShort int
}

// ErrRequirementNotMet is the sentinel matched by RequirementError.
var ErrRequirementNotMet = errors.New("round requirement not met")

func (e *RequirementError) Error() string {
	return fmt.Sprintf("round %d requirement not met: short %d set(s), %d run(s)",
		e.Round, e.SetsShort, e.RunsShort)
}

func (e *RequirementError) Unwrap() error { return ErrRequirementNotMet }
