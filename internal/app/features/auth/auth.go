// internal/app/features/auth/auth.go
package auth

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	userstore "github.com/jansethu/mysarkar/internal/app/store/users"
	"github.com/jansethu/mysarkar/internal/app/system/authutil"
	"github.com/jansethu/mysarkar/internal/app/system/authz"
	"github.com/jansethu/mysarkar/internal/app/system/inputval"
	"github.com/jansethu/mysarkar/internal/app/system/respond"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// passwordPlaceholder is what profile forms send back when the password
// field was left untouched.
const passwordPlaceholder = "********"

// userSummary is the public identity returned by login and register.
type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func summaryOf(u *models.User) userSummary {
	return userSummary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

// userDetail adds the profile blocks returned by /me and /update.
type userDetail struct {
	userSummary
	EmailVerified bool            `json:"emailVerified"`
	Permissions   []string        `json:"permissions,omitempty"`
	Profile       models.Profile  `json:"profile"`
	Location      models.Location `json:"location"`
}

func detailOf(u *models.User) userDetail {
	return userDetail{
		userSummary:   summaryOf(u),
		EmailVerified: u.EmailVerified,
		Permissions:   u.Permissions,
		Profile:       u.Profile,
		Location:      u.Location,
	}
}

type registerInput struct {
	Name     string `json:"name" validate:"required,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
	Role     string `json:"role" validate:"omitempty,oneof=user govt_official ngo" label:"Role"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Message(w, http.StatusBadRequest, res.First())
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		respond.Message(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()

	_, err := h.Users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		respond.Message(w, http.StatusBadRequest, "User already exists")
		return
	case !errors.Is(err, userstore.ErrNotFound):
		h.Log.Error("register: lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.Log.Error("register: hash failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	u, err := h.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Message(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		h.Log.Error("register: create failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		h.Log.Error("register: issue token failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	h.Audit.UserRegistered(ctx, r, u.ID, u.Email, u.Role)
	respond.Created(w, map[string]any{
		"message":      "Registration successful",
		"access_token": token,
		"user":         summaryOf(&u),
	})
}

type loginInput struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
	Role     string `json:"role"`
}

// Login handles POST /auth/login. Unknown email and wrong password answer
// the same 401 so the endpoint does not reveal which accounts exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Message(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.Audit.LoginFailedUserNotFound(ctx, r, in.Email)
		respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("login: lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Login failed", err)
		return
	}
	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if in.Role != "" && in.Role != u.Role {
		h.Audit.LoginFailedRoleMismatch(ctx, r, u.ID, u.Email, in.Role)
		respond.Message(w, http.StatusForbidden, "Role mismatch")
		return
	}

	if err := h.Users.TouchLastLogin(ctx, u.ID, time.Now()); err != nil {
		h.Log.Warn("login: last_login update failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		h.Log.Error("login: issue token failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	respond.OK(w, map[string]any{
		"message":      "Login successful",
		"access_token": token,
		"user":         summaryOf(u),
	})
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth me")
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("me: lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch user", err)
		return
	}

	respond.OK(w, map[string]any{"user": detailOf(u)})
}

type verifyInput struct {
	Approve *bool `json:"approve"`
}

// Verify handles PATCH /auth/verify/{userId}. Only govt_officials holding
// manage_users may verify accounts; approve defaults to true.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var in verifyInput
	if err := respond.Decode(r, &in); err != nil && !errors.Is(err, io.EOF) {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	approve := in.Approve == nil || *in.Approve

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "verify user")
	defer cancel()

	requester, err := h.Users.GetByID(ctx, uid)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		h.Log.Error("verify: requester lookup failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Verification failed", err)
		return
	}
	if !authz.CanManageUsers(requester) {
		respond.Message(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}

	u, err := h.Users.SetEmailVerified(ctx, target, approve)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("verify: update failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Verification failed", err)
		return
	}

	msg := "User verified successfully"
	if !approve {
		msg = "User verification revoked"
	}
	h.Log.Info("user verification changed",
		zap.String("user_id", u.ID.Hex()),
		zap.String("by", uid.Hex()),
		zap.Bool("verified", approve))
	h.Audit.UserVerification(ctx, r, uid, u.ID, approve)
	respond.OK(w, map[string]any{
		"message": msg,
		"user": map[string]any{
			"id":            u.ID.Hex(),
			"name":          u.Name,
			"email":         u.Email,
			"role":          u.Role,
			"emailVerified": u.EmailVerified,
		},
	})
}

type locationInput struct {
	State       string              `json:"state" validate:"max=100" label:"State"`
	District    string              `json:"district" validate:"max=100" label:"District"`
	Pincode     string              `json:"pincode" validate:"omitempty,pincode_in" label:"Pincode"`
	Address     string              `json:"address" validate:"max=500" label:"Address"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

type profileInput struct {
	Phone       string                `json:"phone" validate:"omitempty,phone_in" label:"Phone"`
	DateOfBirth *time.Time            `json:"dateOfBirth"`
	Gender      string                `json:"gender" validate:"omitempty,oneof=male female other" label:"Gender"`
	Category    string                `json:"category" validate:"omitempty,oneof=general obc sc st ews" label:"Category"`
	Income      *models.Income        `json:"income"`
	Documents   []models.UserDocument `json:"documents" validate:"omitempty,dive" label:"Documents"`
}

type updateInput struct {
	Name        string         `json:"name" validate:"max=100" label:"Name"`
	Email       string         `json:"email" validate:"omitempty,email" label:"Email"`
	Password    string         `json:"password"`
	Role        string         `json:"role" validate:"omitempty,oneof=user govt_official ngo" label:"Role"`
	Permissions []string       `json:"permissions" validate:"omitempty,dive,oneof=read_schemes apply_schemes manage_schemes manage_users approve_applications view_analytics" label:"Permission"`
	Profile     *profileInput  `json:"profile"`
	Location    *locationInput `json:"location"`
}

// Update handles PUT /auth/update. Only non-empty fields are written; the
// profile and location blocks are merged key by key. Role and permission
// changes are honored for govt_official callers only.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerRole, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var in updateInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Message(w, http.StatusBadRequest, res.First())
		return
	}

	upd := userstore.ProfileUpdate{
		Name:  in.Name,
		Email: in.Email,
	}
	if authz.IsOfficial(r) {
		upd.Role = in.Role
		upd.Permissions = in.Permissions
	}
	if pw := in.Password; pw != "" && pw != passwordPlaceholder && strings.TrimSpace(pw) != "" {
		if err := authutil.ValidatePassword(pw); err != nil {
			respond.Message(w, http.StatusBadRequest, authutil.PasswordRules())
			return
		}
		hash, err := authutil.HashPassword(pw)
		if err != nil {
			h.Log.Error("update: hash failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Profile update failed", err)
			return
		}
		upd.PasswordHash = hash
	}
	if l := in.Location; l != nil {
		upd.Location = models.Location{
			State:       strings.TrimSpace(l.State),
			District:    strings.TrimSpace(l.District),
			Pincode:     strings.TrimSpace(l.Pincode),
			Address:     strings.TrimSpace(l.Address),
			Coordinates: l.Coordinates,
		}
	}
	if p := in.Profile; p != nil {
		upd.Profile = models.Profile{
			Phone:       strings.TrimSpace(p.Phone),
			DateOfBirth: p.DateOfBirth,
			Gender:      p.Gender,
			Category:    p.Category,
			Income:      p.Income,
			Documents:   p.Documents,
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update profile")
	defer cancel()

	u, err := h.Users.Update(ctx, uid, upd)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Message(w, http.StatusBadRequest, "User already exists")
		return
	case err != nil:
		h.Log.Error("update: store failed", zap.Error(err), zap.String("user_id", uid.Hex()))
		respond.Error(w, http.StatusInternalServerError, "Profile update failed", err)
		return
	}

	if u.Role != callerRole {
		h.Audit.UserRoleChanged(ctx, r, uid, u.ID, callerRole, u.Role)
	}
	respond.OK(w, map[string]any{
		"message": "Profile updated successfully",
		"user":    detailOf(u),
	})
}
