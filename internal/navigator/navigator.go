package navigator

// Navigator owns the current ViewState of one open certification modal and
// the stack of states the user came from. It is confined to the UI
// goroutine and does no locking.
//
// Forward navigation always pushes, even when the target equals the current
// state, and sibling branches are never collapsed: add-session, then
// sessions-list, then session-details leaves add-session on the stack, so
// GoBack from session-details lands on sessions-list and then add-session.
type Navigator struct {
	current ViewState
	stack   []ViewState
}

// New opens at the certification details view.
func New(certificationID string) *Navigator {
	return &Navigator{current: Certification(certificationID)}
}

// Current returns the active state.
func (n *Navigator) Current() ViewState {
	return n.current
}

// NavigateTo pushes the current state and makes next current. Callers only
// navigate once the certification has loaded.
func (n *Navigator) NavigateTo(next ViewState) {
	n.stack = append(n.stack, n.current)
	n.current = next
}

// GoBack pops one state. It reports false, and changes nothing, when the
// stack is empty.
func (n *Navigator) GoBack() bool {
	if len(n.stack) == 0 {
		return false
	}
	last := len(n.stack) - 1
	n.current = n.stack[last]
	n.stack = n.stack[:last]
	return true
}

// Previous is the state GoBack would restore.
func (n *Navigator) Previous() (ViewState, bool) {
	if len(n.stack) == 0 {
		return ViewState{}, false
	}
	return n.stack[len(n.stack)-1], true
}

// Depth is the number of states GoBack can still restore.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// AtRoot reports whether there is nothing to go back to.
func (n *Navigator) AtRoot() bool {
	return len(n.stack) == 0
}

// History returns a copy of the stack, oldest first.
func (n *Navigator) History() []ViewState {
	return append([]ViewState(nil), n.stack...)
}

// Breadcrumbs labels the stack followed by the current state.
func (n *Navigator) Breadcrumbs() []string {
	crumbs := make([]string, 0, len(n.stack)+1)
	for _, s := range n.stack {
		crumbs = append(crumbs, s.Label())
	}
	return append(crumbs, n.current.Label())
}
