package http

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// AuthService is the account and token lifecycle the auth endpoints need.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*entities.User, error)
	StartSession(ctx context.Context, user *entities.User) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID string, update auth.ProfileUpdate) (*entities.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// LoginLimiter throttles repeated failed logins per client and email.
type LoginLimiter interface {
	Allow(ip, email string) (bool, time.Duration)
	RecordFailure(ip, email string) (bool, time.Duration)
	RecordSuccess(ip, email string)
}

type AuthController struct {
	service AuthService
	limiter LoginLimiter
}

// NewAuthController creates the auth endpoints. limiter may be nil.
func NewAuthController(service AuthService, limiter LoginLimiter) *AuthController {
	return &AuthController{service: service, limiter: limiter}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileRequest struct {
	FirstName   *string             `json:"firstName"`
	LastName    *string             `json:"lastName"`
	Avatar      *string             `json:"avatar"`
	Preferences *preferencesRequest `json:"preferences"`
}

type preferencesRequest struct {
	FavoriteCategories []string                `json:"favoriteCategories"`
	DailyReminder      *entities.DailyReminder `json:"dailyReminder"`
	Theme              *entities.Theme         `json:"theme"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register creates an account and signs it in
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "register")
		return
	}

	session, err := ac.service.StartSession(c.Request.Context(), user)
	if err != nil {
		respondError(c, err, "register session")
		return
	}

	logging.Info().Str("user_id", user.ID).Msg("user registered")
	respondCreated(c, "User registered successfully", session)
}

// Login
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondBadRequest(c, "Email and password are required")
		return
	}

	ip := c.ClientIP()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if ac.limiter != nil {
		if allowed, wait := ac.limiter.Allow(ip, email); !allowed {
			respondTooManyAttempts(c, wait)
			return
		}
	}

	session, err := ac.service.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		if ac.limiter != nil && errors.Is(err, apperrors.ErrInvalidCredentials) {
			if locked, wait := ac.limiter.RecordFailure(ip, email); locked {
				respondTooManyAttempts(c, wait)
				return
			}
		}
		respondError(c, err, "login")
		return
	}

	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, email)
	}
	respondMessage(c, "Login successful", session)
}

func respondTooManyAttempts(c *gin.Context, wait time.Duration) {
	seconds := int(math.Ceil(wait.Seconds()))
	c.Header("Retry-After", fmt.Sprintf("%d", seconds))
	respondStatus(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
}

// Refresh issues a new access token
// POST /api/auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondBadRequest(c, "Refresh token is required")
		return
	}

	token, err := ac.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "refresh")
		return
	}
	respondMessage(c, "Token refreshed", gin.H{"token": token})
}

// Logout revokes a refresh token. Unknown tokens are not an error.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondBadRequest(c, "Refresh token is required")
		return
	}

	if err := ac.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err, "logout")
		return
	}
	respondMessage(c, "Logged out successfully", nil)
}

// GET /api/auth/profile
func (ac *AuthController) Profile(c *gin.Context) {
	user, err := ac.service.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err, "get profile")
		return
	}
	respondOK(c, user)
}

// PUT /api/auth/profile
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}

	update := auth.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	}
	if req.Preferences != nil {
		update.Preferences = &auth.PreferencesUpdate{
			FavoriteCategories: req.Preferences.FavoriteCategories,
			DailyReminder:      req.Preferences.DailyReminder,
			Theme:              req.Preferences.Theme,
		}
	}

	user, err := ac.service.UpdateProfile(c.Request.Context(), auth.UserID(c), update)
	if err != nil {
		respondError(c, err, "update profile")
		return
	}
	respondMessage(c, "Profile updated successfully", user)
}

// ChangePassword verifies the current password and signs out every session
// PUT /api/auth/password
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondBadRequest(c, "Current and new password are required")
		return
	}

	if err := ac.service.ChangePassword(c.Request.Context(), auth.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "change password")
		return
	}
	respondMessage(c, "Password changed successfully", nil)
}
