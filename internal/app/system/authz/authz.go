// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), Mongo ObjectID, and a found flag.
// If no user is present in context or the token carried a malformed id, it
// returns "visitor", NilObjectID, false. Callers can trust that ok=true means
// an authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), userID, true
}

// IsOfficial reports whether the current request's user is a govt_official.
func IsOfficial(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleGovtOfficial
}

// IsNGO reports whether the current request's user is an NGO account.
func IsNGO(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleNGO
}

// IsCitizen reports whether the current request's user has the plain user role.
func IsCitizen(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleUser
}

// CanManageUsers reports whether u may verify other accounts.
// Only govt_officials holding the manage_users permission can.
func CanManageUsers(u *models.User) bool {
	return u != nil && u.Role == models.RoleGovtOfficial && u.HasPermission(models.PermManageUsers)
}

// CanModerate reports whether the current user may act on content owned by ownerID.
// Owners can; govt_officials can act on anything.
func CanModerate(r *http.Request, ownerID primitive.ObjectID) bool {
	role, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	return uid == ownerID || role == models.RoleGovtOfficial
}
