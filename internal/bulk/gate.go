package bulk

import (
	"context"
	"fmt"
)

// Prompter asks the operator a yes/no question. Anything other than an explicit
// yes must come back as false.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Gate is the single point before any irreversible change. It asks at most
// once per run and is only bypassed by AutoApprove.
type Gate struct {
	Prompter    Prompter
	AutoApprove bool
	// Announce renders the pending changes before the question is asked.
	Announce func(Inventory) error

	asked bool
}

func (g *Gate) Confirm(ctx context.Context, inv Inventory) (bool, error) {
	if g.asked {
		return false, ErrGateReused
	}
	g.asked = true

	if g.Announce != nil {
		if err := g.Announce(inv); err != nil {
			return false, err
		}
	}
	if g.AutoApprove {
		return true, nil
	}
	if g.Prompter == nil {
		return false, nil
	}

	question := fmt.Sprintf("Disable analytical store on %d container(s)? [y/N]: ", len(inv.Records))
	return g.Prompter.Confirm(ctx, question)
}
