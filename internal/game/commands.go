package game

import (
	"context"
	"fmt"
)

// Command is one user intent. The set is closed: only the types in this
// file implement it.
type Command interface {
	command()
}

type (
	SelectGame   struct{ ID string }
	Back         struct{}
	BeginStroke  struct{ X, Y float64 }
	ExtendStroke struct{ X, Y float64 }
	EndStroke    struct{}
	Clear        struct{}
	Check        struct{}
	Advance      struct{}
	Retreat      struct{}
)

func (SelectGame) command()   {}
func (Back) command()         {}
func (BeginStroke) command()  {}
func (ExtendStroke) command() {}
func (EndStroke) command()    {}
func (Clear) command()        {}
func (Check) command()        {}
func (Advance) command()      {}
func (Retreat) command()      {}

// Outcome reports side effects of a dispatched command.
type Outcome struct {
	Load  *LoadJob     // SelectGame on a game with a model
	Ended *Summary     // Back
	Check *CheckResult // Check, including failed checks
	Moved bool         // Advance or Retreat changed the index
}

// Dispatch applies cmd. It is the only entry point that mutates router
// and session state in response to user input.
func (r *Router) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	switch c := cmd.(type) {
	case SelectGame:
		job, err := r.SelectGame(c.ID)
		return Outcome{Load: job}, err
	case Back:
		sum, err := r.GoBack()
		return Outcome{Ended: sum}, err
	}

	s := r.session
	if s == nil {
		return Outcome{}, fmt.Errorf("%T: %w", cmd, ErrNoActiveSession)
	}

	switch c := cmd.(type) {
	case BeginStroke:
		s.surface.BeginStroke(c.X, c.Y)
	case ExtendStroke:
		s.surface.ExtendStroke(c.X, c.Y)
	case EndStroke:
		s.surface.EndStroke()
	case Clear:
		s.surface.Clear()
	case Check:
		res, err := s.Check(ctx)
		return Outcome{Check: &res}, err
	case Advance:
		return Outcome{Moved: s.Advance()}, nil
	case Retreat:
		return Outcome{Moved: s.Retreat()}, nil
	default:
		return Outcome{}, fmt.Errorf("unknown command %T", cmd)
	}
	return Outcome{}, nil
}
