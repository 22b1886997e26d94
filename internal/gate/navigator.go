package gate

import "sync"

// Ticket identifies one navigation attempt.
type Ticket struct {
	seq      uint64
	Target   string
	ReturnTo string
}

// Navigator sequences navigations for one client so that a decision computed for an
// older navigation is dropped once a newer one has started.
type Navigator struct {
	gate *Gate

	mu     sync.Mutex
	latest uint64
}

// NewNavigator wraps g.
func NewNavigator(g *Gate) *Navigator {
	return &Navigator{gate: g}
}

// Navigate records a new navigation and supersedes every earlier ticket.
func (n *Navigator) Navigate(target, returnTo string) Ticket {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latest++
	return Ticket{seq: n.latest, Target: target, ReturnTo: returnTo}
}

// Resolve decides the ticket's navigation against state. It returns false when the ticket
// was superseded and the decision must not be applied.
func (n *Navigator) Resolve(t Ticket, state AuthState) (Decision, bool) {
	d := n.gate.Decide(state, t.Target, t.ReturnTo)
	n.mu.Lock()
	defer n.mu.Unlock()
	if t.seq != n.latest {
		return Decision{}, false
	}
	return d, true
}
