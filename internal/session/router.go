package session

import "fmt"

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "LoggedOut"
	case LoggedIn:
		return "LoggedIn"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Event int

const (
	// EventLogin fires after the remote host accepted the credentials.
	EventLogin Event = iota
	// EventLoginFailed fires after the remote host rejected them or could
	// not be reached.
	EventLoginFailed
	EventLogout
	// EventSessionLost fires when a query finds no usable session.
	EventSessionLost
)

const (
	RouteLogin     = "/login"
	RouteDashboard = "/nodes"
)

// Router is the two-state login/dashboard machine that decides which page
// the front end shows.
type Router struct {
	state State
}

func NewRouter(authenticated bool) *Router {
	if authenticated {
		return &Router{state: LoggedIn}
	}
	return &Router{state: LoggedOut}
}

func (r *Router) State() State {
	return r.state
}

// Fire applies ev. Events that make no sense in the current state are
// rejected and leave the state unchanged.
func (r *Router) Fire(ev Event) error {
	switch {
	case r.state == LoggedOut && ev == EventLogin:
		r.state = LoggedIn
	case r.state == LoggedOut && ev == EventLoginFailed:
	case r.state == LoggedIn && (ev == EventLogout || ev == EventSessionLost):
		r.state = LoggedOut
	default:
		return fmt.Errorf("event %d not allowed in state %s", ev, r.state)
	}
	return nil
}

func (r *Router) Route() string {
	if r.state == LoggedIn {
		return RouteDashboard
	}
	return RouteLogin
}
