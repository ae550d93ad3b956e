package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
		cfg:        cfg,
	}
}

type RegisterForm struct {
	Username string `form:"username" binding:"required,min=2,max=40"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) ShowRegister(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.html", gin.H{"User": currentUser(ctx)})
}

// Register creates the user and signs them in by setting the jwt cookie. A
// duplicate email re-renders the form without creating anything.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var form RegisterForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.renderRegister(ctx, formErrorMessage(err), "")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(form.Password)

	if err != nil {
		h.renderRegister(ctx, "Could not create user", "")
		return
	}

	now := time.Now().UTC()

	u, err := h.userWriter.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		// new users never pick their own role
		Role:      auth.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.renderRegister(ctx, "Email already exists", "")
			return
		}

		h.renderRegister(ctx, "Could not create user", "")
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Role)

	if err != nil {
		h.renderRegister(ctx, "Could not create session", "")
		return
	}

	h.setSessionCookie(ctx, token)

	h.renderRegister(ctx, "", "Registered successfully! Welcome, "+u.Username)
}

func (h *AuthHandler) ShowLogin(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", gin.H{"User": currentUser(ctx)})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.renderLogin(ctx, "Invalid credentials")
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, form.Email)
	if err != nil {
		h.renderLogin(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, form.Password)

	if err != nil {
		h.renderLogin(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.Issue(foundUser.ID, foundUser.Role)

	if err != nil {
		h.renderLogin(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusFound, "/login")
}

// Helper functions

func (h *AuthHandler) renderRegister(ctx *gin.Context, errMsg, success string) {
	data := gin.H{"User": currentUser(ctx)}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	if success != "" {
		data["Success"] = success
	}

	ctx.HTML(http.StatusOK, "register.html", data)
}

func (h *AuthHandler) renderLogin(ctx *gin.Context, errMsg string) {
	data := gin.H{"User": currentUser(ctx)}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	ctx.HTML(http.StatusOK, "login.html", data)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		h.cfg.CookieName,
		token,
		int(h.cfg.TokenTTL().Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		h.cfg.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
