package auth

import (
	"errors"
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"ROLE_ADMIN", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"ROLE_EDITOR", RoleEditor},
		{"EDITOR", RoleEditor},
		{"USER", RoleUser},
		{"", RoleUser},
		{"   ", RoleUser},
		{"ROLE_", RoleUser},
		{"admin", RoleAdmin},
		{"role_user", RoleUser},
		{"SUPERUSER", Role("SUPERUSER")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeRole(tt.input); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRole_PrefixedAndBareAgree(t *testing.T) {
	for _, r := range ValidRoles {
		if NormalizeRole("ROLE_"+string(r)) != NormalizeRole(string(r)) {
			t.Errorf("prefixed and bare %s normalize differently", r)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("ROLE_EDITOR"); err != nil || r != RoleEditor {
		t.Errorf("ParseRole(ROLE_EDITOR) = %q, %v", r, err)
	}
	if _, err := ParseRole("OWNER"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ParseRole(OWNER) error = %v, want ErrInvalidRole", err)
	}
}

func TestRole_Ordering(t *testing.T) {
	if !(RoleUser.Rank() < RoleEditor.Rank() && RoleEditor.Rank() < RoleAdmin.Rank()) {
		t.Fatal("expected USER < EDITOR < ADMIN")
	}
	if !RoleAdmin.AtLeast(RoleEditor) {
		t.Error("ADMIN should be at least EDITOR")
	}
	if RoleUser.AtLeast(RoleEditor) {
		t.Error("USER should not be at least EDITOR")
	}
	if Role("GUEST").AtLeast(RoleUser) {
		t.Error("unknown role should not be at least USER")
	}
	if Role("GUEST").IsValid() {
		t.Error("unknown role should be invalid")
	}
}

func TestPromotionOnCreate(t *testing.T) {
	tests := []struct {
		current     Role
		wantRole    Role
		wantPromote bool
	}{
		{RoleUser, RoleEditor, true},
		{Role("ROLE_USER"), RoleEditor, true},
		{Role(""), RoleEditor, true},
		{RoleEditor, "", false},
		{RoleAdmin, "", false},
		{Role("ROLE_ADMIN"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			got, ok := PromotionOnCreate(tt.current)
			if ok != tt.wantPromote || got != tt.wantRole {
				t.Errorf("PromotionOnCreate(%q) = %q, %v; want %q, %v", tt.current, got, ok, tt.wantRole, tt.wantPromote)
			}
		})
	}
}

func TestUser_EffectiveRole(t *testing.T) {
	u := &User{Role: Role("ROLE_ADMIN")}
	if u.EffectiveRole() != RoleAdmin {
		t.Errorf("EffectiveRole() = %q, want ADMIN", u.EffectiveRole())
	}
}
