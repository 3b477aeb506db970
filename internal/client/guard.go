package client

// Decision is the outcome of Guard for a protected screen.
type Decision int

const (
	// DecisionLoading means hydration is still pending; show a placeholder.
	DecisionLoading Decision = iota
	// DecisionRedirectLogin means the session resolved anonymous.
	DecisionRedirectLogin
	// DecisionProceed means the session has a user.
	DecisionProceed
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionProceed:
		return "proceed"
	}
	return "unknown"
}

// Guard decides whether a protected screen may render.
func Guard(s *Session) Decision {
	if s.Loading() {
		return DecisionLoading
	}
	if !s.Authenticated() {
		return DecisionRedirectLogin
	}
	return DecisionProceed
}
