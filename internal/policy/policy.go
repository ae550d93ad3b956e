package policy

import "github.com/geocoder89/recipehub/internal/auth"

// CanModify is the single ownership rule for recipe edit/delete and comment
// delete: the actor must own the resource or hold the admin role. Every
// mutation path calls this instead of re-deriving the comparison inline.
func CanModify(ident auth.Identity, ownerID string) bool {
	if ident.IsAnonymous() {
		return false
	}

	return ident.UserID == ownerID || ident.Role == auth.RoleAdmin
}
