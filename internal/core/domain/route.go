package domain

// RouteOutcome enumerates what the gate can decide for a navigation.
type RouteOutcome int

const (
	RouteAllow RouteOutcome = iota
	RouteRedirectToLogin
	RouteRedirectToDefault
)

func (o RouteOutcome) String() string {
	switch o {
	case RouteAllow:
		return "allow"
	case RouteRedirectToLogin:
		return "redirect_login"
	case RouteRedirectToDefault:
		return "redirect_default"
	default:
		return "unknown"
	}
}

// LoginPath is where unauthenticated navigations end up.
const LoginPath = "/login"

// RouteDecision is produced fresh for every navigation and never persisted.
type RouteDecision struct {
	Outcome RouteOutcome
	// ViewKey and Vars are set only for RouteAllow.
	ViewKey string
	Vars    map[string]string
	// Location is set only for redirects.
	Location string
}

func Allow(viewKey string, vars map[string]string) RouteDecision {
	return RouteDecision{Outcome: RouteAllow, ViewKey: viewKey, Vars: vars}
}

func RedirectToLogin() RouteDecision {
	return RouteDecision{Outcome: RouteRedirectToLogin, Location: LoginPath}
}

func RedirectToDefault(r Role) RouteDecision {
	return RouteDecision{Outcome: RouteRedirectToDefault, Location: r.DashboardRoot()}
}

// Allowed reports whether the view may render.
func (d RouteDecision) Allowed() bool {
	return d.Outcome == RouteAllow
}

// GateState is the position of the routing state machine.
type GateState struct {
	Authenticated bool
	Role          Role
}

func (s GateState) String() string {
	if !s.Authenticated {
		return "unauthenticated"
	}
	return "authenticated_as_" + string(s.Role)
}
