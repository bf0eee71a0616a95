package authz

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	order := Roles()
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("expected %s < %s", order[i-1], order[i])
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role, min Role
		want      bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleModerator, RoleAdmin, false},
		{RoleViewer, RoleViewer, true},
		{RoleUser, RoleModerator, false},
		{Role("intruder"), RoleViewer, false},
	}
	for _, tc := range cases {
		if got := tc.role.AtLeast(tc.min); got != tc.want {
			t.Fatalf("AtLeast(%s, %s)=%v, want %v", tc.role, tc.min, got, tc.want)
		}
	}
}

// Monotonicity: anything a lower role may do, every higher role may do too.
func TestRoleGateMonotonicity(t *testing.T) {
	order := Roles()
	for i, min := range order {
		for j, role := range order {
			want := j >= i
			if got := role.AtLeast(min); got != want {
				t.Fatalf("AtLeast(%s, %s)=%v, want %v", role, min, got, want)
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("  Moderator "); !ok || role != RoleModerator {
		t.Fatalf("expected moderator, got %q ok=%v", role, ok)
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, ok := ParseRole(""); ok {
		t.Fatal("expected empty role to be rejected")
	}
}
