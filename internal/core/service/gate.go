package service

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// View is one screen reachable through the gate.
type View struct {
	Key      string
	Template string
}

// PublicViews render regardless of session state.
var PublicViews = []View{
	{Key: "public.home", Template: "/"},
	{Key: "public.login", Template: domain.LoginPath},
	{Key: "public.register", Template: "/register"},
	{Key: "public.register_with_token", Template: "/register_with_token/{token}"},
}

// DashboardViews lists each role's dashboard subviews, relative to the
// role's dashboard root. The empty template is the root itself.
var DashboardViews = map[domain.Role][]View{
	domain.RoleAdmin: {
		{Key: "home", Template: ""},
		{Key: "users", Template: "users"},
		{Key: "inventory", Template: "inventory"},
		{Key: "inventory.add", Template: "inventory/add"},
		{Key: "inventory.update", Template: "inventory/update/{id}"},
		{Key: "inventory.assign", Template: "inventory/assign"},
		{Key: "payments", Template: "payments"},
		{Key: "payments.process", Template: "payments/process"},
		{Key: "supply-requests", Template: "supply-requests"},
		{Key: "reports", Template: "reports"},
	},
	domain.RoleMerchant: {
		{Key: "home", Template: ""},
		{Key: "inventory", Template: "inventory"},
		{Key: "inventory.add", Template: "inventory/add"},
		{Key: "inventory.update", Template: "inventory/update/{id}"},
		{Key: "inventory.assign", Template: "inventory/assign"},
		{Key: "payments", Template: "payments"},
		{Key: "sales", Template: "sales"},
		{Key: "reports", Template: "reports"},
		{Key: "stores", Template: "stores"},
		{Key: "admins", Template: "admins"},
		{Key: "admins.invite", Template: "admins/invite"},
	},
	domain.RoleClerk: {
		{Key: "home", Template: ""},
		{Key: "stock", Template: "stock"},
		{Key: "supply-requests", Template: "supply-requests"},
		{Key: "products", Template: "products"},
	},
}

// ViewKey qualifies a dashboard subview key with its role scope.
func ViewKey(role domain.Role, sub string) string {
	return string(role) + "." + sub
}

// Gate maps a requested path and a session snapshot to a RouteDecision.
// It is pure: it never mutates the session it is shown.
type Gate struct {
	public    *mux.Router
	dashboard *mux.Router
	scopes    map[string]domain.Role
}

func NewGate() *Gate {
	g := &Gate{
		public:    mux.NewRouter(),
		dashboard: mux.NewRouter(),
		scopes:    make(map[string]domain.Role),
	}
	for _, v := range PublicViews {
		g.public.Path(v.Template).Name(v.Key)
	}
	for _, role := range domain.Roles {
		for _, v := range DashboardViews[role] {
			tmpl := role.DashboardRoot()
			if v.Template != "" {
				tmpl += "/" + v.Template
			}
			key := ViewKey(role, v.Key)
			g.dashboard.Path(tmpl).Name(key)
			g.scopes[key] = role
		}
	}
	return g
}

// StateOf reports where the routing state machine stands for a snapshot.
func (g *Gate) StateOf(state domain.SessionState) domain.GateState {
	role, ok := state.Role()
	return domain.GateState{Authenticated: ok, Role: role}
}

// Evaluate runs the routing algorithm:
//  1. public paths are always allowed;
//  2. without an identity everything else goes to the login page;
//  3. a dashboard path scoped to another role, or an unknown path, sends the
//     user to their own dashboard root;
//  4. otherwise the view renders.
func (g *Gate) Evaluate(requested string, state domain.SessionState) domain.RouteDecision {
	p := normalizePath(requested)

	if key, vars, ok := match(g.public, p); ok {
		return domain.Allow(key, vars)
	}

	gs := g.StateOf(state)
	if !gs.Authenticated {
		return domain.RedirectToLogin()
	}

	key, vars, ok := match(g.dashboard, p)
	if !ok || g.scopes[key] != gs.Role {
		return domain.RedirectToDefault(gs.Role)
	}
	return domain.Allow(key, vars)
}

func match(r *mux.Router, p string) (string, map[string]string, bool) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: p}}
	var m mux.RouteMatch
	if !r.Match(req, &m) || m.Route == nil {
		return "", nil, false
	}
	return m.Route.GetName(), m.Vars, true
}

// normalizePath cleans dot segments and drops a trailing slash so that
// "/dashboard/admin/" and "/dashboard/admin" decide alike.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
