package policy

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
	}{
		{"Employee", RoleEmployee},
		{"employee", RoleEmployee},
		{"EMPLOYEE", RoleEmployee},
		{"NewUser", RoleEmployee},
		{"newuser", RoleEmployee},
		{"Admin", RoleAdmin},
		{"admin", RoleAdmin},
		{"SuperAdmin", RoleSuperAdmin},
		{"superadmin", RoleSuperAdmin},
		{"  SuperAdmin  ", RoleSuperAdmin},
		{"", RoleUnknown},
		{"root", RoleUnknown},
	}

	for _, tc := range cases {
		if got := ParseRole(tc.raw); got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCanCancelBooking(t *testing.T) {
	roles := []Role{RoleEmployee, RoleAdmin, RoleSuperAdmin}

	// want[actorRole][ownerRole] for the non-self case.
	nonSelf := map[Role]map[Role]bool{
		RoleEmployee: {
			RoleEmployee:   false,
			RoleAdmin:      false,
			RoleSuperAdmin: false,
		},
		RoleAdmin: {
			RoleEmployee:   true,
			RoleAdmin:      false,
			RoleSuperAdmin: false,
		},
		RoleSuperAdmin: {
			RoleEmployee:   true,
			RoleAdmin:      true,
			RoleSuperAdmin: true,
		},
	}

	t.Run("non-self ownership matrix", func(t *testing.T) {
		for _, actorRole := range roles {
			for _, ownerRole := range roles {
				actor := Actor{ID: "actor", Role: actorRole}
				owner := Actor{ID: "owner", Role: ownerRole}
				got := CanCancelBooking(actor, owner)
				if got != nonSelf[actorRole][ownerRole] {
					t.Errorf("CanCancelBooking(%s, %s-owned) = %v, want %v",
						actorRole, ownerRole, got, nonSelf[actorRole][ownerRole])
				}
			}
		}
	})

	t.Run("own booking always cancellable", func(t *testing.T) {
		for _, role := range roles {
			self := Actor{ID: "u1", Role: role}
			if !CanCancelBooking(self, self) {
				t.Errorf("%s cannot cancel own booking", role)
			}
		}
	})

	t.Run("unknown role denies everything", func(t *testing.T) {
		actor := Actor{ID: "u1", Role: RoleUnknown}
		if CanCancelBooking(actor, actor) {
			t.Error("unknown role cancelled own booking")
		}
		if CanCancelBooking(actor, Actor{ID: "u2", Role: RoleEmployee}) {
			t.Error("unknown role cancelled employee booking")
		}
	})
}

func TestCanAssignTask(t *testing.T) {
	roles := []Role{RoleEmployee, RoleAdmin, RoleSuperAdmin}

	want := map[Role]map[Role]bool{
		RoleEmployee: {
			RoleEmployee:   false,
			RoleAdmin:      false,
			RoleSuperAdmin: false,
		},
		RoleAdmin: {
			RoleEmployee:   true,
			RoleAdmin:      false,
			RoleSuperAdmin: false,
		},
		RoleSuperAdmin: {
			RoleEmployee:   true,
			RoleAdmin:      true,
			RoleSuperAdmin: false,
		},
	}

	t.Run("role matrix", func(t *testing.T) {
		for _, assignerRole := range roles {
			for _, assigneeRole := range roles {
				assigner := Actor{ID: "assigner", Role: assignerRole}
				assignee := Actor{ID: "assignee", Role: assigneeRole}
				got := CanAssignTask(assigner, assignee)
				if got != want[assignerRole][assigneeRole] {
					t.Errorf("CanAssignTask(%s, %s) = %v, want %v",
						assignerRole, assigneeRole, got, want[assignerRole][assigneeRole])
				}
			}
		}
	})

	t.Run("self assignment denied at every tier", func(t *testing.T) {
		for _, role := range roles {
			self := Actor{ID: "u1", Role: role}
			if CanAssignTask(self, self) {
				t.Errorf("%s assigned a task to themself", role)
			}
		}
	})

	t.Run("superadmin to superadmin denied even across identities", func(t *testing.T) {
		a := Actor{ID: "sa-1", Role: RoleSuperAdmin}
		b := Actor{ID: "sa-2", Role: RoleSuperAdmin}
		if CanAssignTask(a, b) {
			t.Error("superadmin assigned a task to another superadmin")
		}
	})
}

func TestCanCancelTask(t *testing.T) {
	roles := []Role{RoleEmployee, RoleAdmin, RoleSuperAdmin}

	t.Run("employee never cancels", func(t *testing.T) {
		employee := Actor{ID: "e1", Role: RoleEmployee}
		for _, assignerRole := range roles {
			if CanCancelTask(employee, Actor{ID: "x", Role: assignerRole}) {
				t.Errorf("employee cancelled task assigned by %s", assignerRole)
			}
		}
	})

	t.Run("admin cancels only own assignments", func(t *testing.T) {
		admin := Actor{ID: "a1", Role: RoleAdmin}
		if !CanCancelTask(admin, Actor{ID: "a1", Role: RoleAdmin}) {
			t.Error("admin could not cancel own assignment")
		}
		if CanCancelTask(admin, Actor{ID: "a2", Role: RoleAdmin}) {
			t.Error("admin cancelled a peer's assignment")
		}
		if CanCancelTask(admin, Actor{ID: "sa", Role: RoleSuperAdmin}) {
			t.Error("admin cancelled a superadmin's assignment")
		}
	})

	t.Run("superadmin cancels admin and superadmin assignments", func(t *testing.T) {
		superAdmin := Actor{ID: "sa", Role: RoleSuperAdmin}
		if !CanCancelTask(superAdmin, Actor{ID: "a1", Role: RoleAdmin}) {
			t.Error("superadmin could not cancel admin assignment")
		}
		if !CanCancelTask(superAdmin, Actor{ID: "sa2", Role: RoleSuperAdmin}) {
			t.Error("superadmin could not cancel superadmin assignment")
		}
		if CanCancelTask(superAdmin, Actor{ID: "e1", Role: RoleEmployee}) {
			t.Error("superadmin cancelled employee-assigned task")
		}
	})

	t.Run("unknown roles deny", func(t *testing.T) {
		if CanCancelTask(Actor{ID: "x"}, Actor{ID: "y", Role: RoleAdmin}) {
			t.Error("unknown actor cancelled a task")
		}
	})
}
