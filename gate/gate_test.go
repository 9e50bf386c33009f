package gate

import (
	"reflect"
	"testing"
)

func always(v bool) func([]string) bool {
	return func([]string) bool { return v }
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name          string
		authenticated bool
		hasRole       func([]string) bool
		allowed       []string
		want          Decision
	}{
		{"unauthenticated no roles", false, nil, nil, RedirectLogin},
		{"unauthenticated has role", false, always(true), []string{"admin"}, RedirectLogin},
		{"unauthenticated lacks role", false, always(false), []string{"admin"}, RedirectLogin},
		{"authenticated no constraint", true, always(false), nil, Render},
		{"authenticated empty constraint", true, always(false), []string{}, Render},
		{"authenticated lacks role", true, always(false), []string{"admin"}, RedirectForbidden},
		{"authenticated has role", true, always(true), []string{"admin"}, Render},
		{"authenticated nil hasRole", true, nil, []string{"admin"}, RedirectForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.authenticated, tc.hasRole, tc.allowed); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestEvaluateSkipsHasRoleWhenUnneeded(t *testing.T) {
	called := false
	hasRole := func([]string) bool {
		called = true
		return true
	}
	Evaluate(false, hasRole, []string{"admin"})
	Evaluate(true, hasRole, nil)
	if called {
		t.Fatal("hasRole must not be consulted without an authenticated constrained request")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Evaluate(true, always(false), []string{"admin"}); got != RedirectForbidden {
			t.Fatalf("run %d: expected forbidden, got %v", i, got)
		}
	}
}

type stubState struct {
	auth  bool
	roles map[string]bool
}

func (s stubState) Authenticated() bool { return s.auth }

func (s stubState) HasRole(allowed []string) bool {
	for _, r := range allowed {
		if s.roles[r] {
			return true
		}
	}
	return false
}

func TestEvaluateState(t *testing.T) {
	if got := EvaluateState(nil, nil); got != RedirectLogin {
		t.Fatalf("nil state: expected login, got %v", got)
	}
	st := stubState{auth: true, roles: map[string]bool{"editor": true}}
	if got := EvaluateState(st, []string{"admin", "editor"}); got != Render {
		t.Fatalf("expected render, got %v", got)
	}
	if got := EvaluateState(st, []string{"admin"}); got != RedirectForbidden {
		t.Fatalf("expected forbidden, got %v", got)
	}
}

func TestPathsTarget(t *testing.T) {
	p := Paths{Login: "/signin"}
	if got := p.Target(RedirectLogin); got != "/signin" {
		t.Fatalf("expected /signin, got %q", got)
	}
	if got := p.Target(RedirectForbidden); got != DefaultForbiddenPath {
		t.Fatalf("expected default forbidden path, got %q", got)
	}
	if got := p.Target(Render); got != "" {
		t.Fatalf("expected empty target for render, got %q", got)
	}
}

func TestTableLongestPrefix(t *testing.T) {
	table := NewTable(
		Rule{Prefix: "/admin/"},
		Rule{Prefix: "/admin/users", Roles: []string{"admin"}},
		Rule{Prefix: "reports", Roles: []string{"analyst", "admin"}},
	)

	cases := []struct {
		path  string
		ok    bool
		roles []string
	}{
		{"/admin", true, nil},
		{"/admin/settings", true, nil},
		{"/admin/users", true, []string{"admin"}},
		{"/admin/users/42", true, []string{"admin"}},
		{"/admin/usersx", true, nil},
		{"/reports/q1", true, []string{"analyst", "admin"}},
		{"/public", false, nil},
	}
	for _, tc := range cases {
		rule, ok := table.Match(tc.path)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.path, tc.ok, ok)
		}
		if ok && !reflect.DeepEqual(rule.Roles, tc.roles) && !(len(rule.Roles) == 0 && len(tc.roles) == 0) {
			t.Fatalf("%s: expected roles %v, got %v", tc.path, tc.roles, rule.Roles)
		}
	}
}

func TestDecisionString(t *testing.T) {
	if Render.String() != "render" || RedirectLogin.String() != "redirect_login" || RedirectForbidden.String() != "redirect_forbidden" {
		t.Fatal("unexpected decision names")
	}
}
