package policy_test

import (
	"testing"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/policy"
)

func TestCanModify(t *testing.T) {
	const ownerID = "owner-1"

	tests := []struct {
		name  string
		ident auth.Identity
		want  bool
	}{
		{
			name:  "anonymous_denied",
			ident: auth.Anonymous(),
			want:  false,
		},
		{
			name:  "owner_allowed",
			ident: auth.Authenticated(ownerID, auth.RoleUser),
			want:  true,
		},
		{
			name:  "other_user_denied",
			ident: auth.Authenticated("someone-else", auth.RoleUser),
			want:  false,
		},
		{
			name:  "admin_allowed_on_any_resource",
			ident: auth.Authenticated("someone-else", auth.RoleAdmin),
			want:  true,
		},
		{
			name:  "admin_who_is_owner_allowed",
			ident: auth.Authenticated(ownerID, auth.RoleAdmin),
			want:  true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanModify(tt.ident, ownerID); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// An identity built by hand (zero value) must behave as anonymous even if
// someone filled in the exported fields.
func TestZeroValueIdentityIsAnonymous(t *testing.T) {
	ident := auth.Identity{UserID: "owner-1", Role: auth.RoleAdmin}

	if !ident.IsAnonymous() {
		t.Fatalf("zero-value identity should be anonymous")
	}

	if policy.CanModify(ident, "owner-1") {
		t.Fatalf("unauthenticated identity must never pass the policy")
	}
}
