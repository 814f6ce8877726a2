package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/users"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/tokenstore"
)

// Session is what a successful login returns.
type Session struct {
	User         *entities.User `json:"user"`
	AccessToken  string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresAt    time.Time      `json:"expiresAt"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Avatar      *string
	Preferences *PreferencesUpdate
}

type PreferencesUpdate struct {
	FavoriteCategories []string
	DailyReminder      *entities.DailyReminder
	Theme              *entities.Theme
}

// Service handles registration, login and token lifecycle.
type Service struct {
	models database.Resolver
	store  tokenstore.Store
	tokens *Issuer
	config config.Auth
	now    func() time.Time

	// decoy is compared against when the email is unknown so a miss costs
	// the same bcrypt work as a wrong password.
	decoyOnce sync.Once
	decoy     string
}

// NewService creates a new authentication service.
func NewService(models database.Resolver, store tokenstore.Store, cfg config.Auth) *Service {
	return &Service{
		models: models,
		store:  store,
		tokens: NewIssuer(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry),
		config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) decoyHash() string {
	s.decoyOnce.Do(func() {
		hash, err := HashPassword("decoy-Password-1", s.config.BcryptCost)
		if err != nil {
			logging.Error().Err(err).Msg("failed to build decoy password hash")
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

func (s *Service) users(ctx context.Context) (*users.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainAuth)
	if err != nil {
		return nil, err
	}
	return users.NewRepository(db), nil
}

// Register creates a user. Usernames and case-folded emails are unique.
func (s *Service) Register(ctx context.Context, username, email, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = users.NormalizeEmail(email)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	repo, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	exists, err := repo.Exists(username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("User already exists with this email or username")
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	user := entities.NewUser(username, email, hash)
	if err := repo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("User already exists with this email or username")
		}
		return nil, err
	}

	logging.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	repo, err := s.users(ctx)
	if err != nil {
		return nil, err
	}

	invalid := apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")
	user, err := repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = CheckPassword(password, s.decoyHash())
			return nil, invalid
		}
		return nil, err
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil || !user.IsActive {
		return nil, invalid
	}

	now := s.now()
	if err := repo.RecordLogin(user.ID, now); err != nil {
		logging.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login")
	} else {
		user.LastLogin = &now
		user.Stats.LastActive = &now
	}

	return s.StartSession(ctx, user)
}

// StartSession issues an access and refresh token pair for user and
// records the refresh token.
func (s *Service) StartSession(ctx context.Context, user *entities.User) (*Session, error) {
	access, expiresAt, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, apperrors.Internal("issue access token", err)
	}
	refresh, refreshExpiresAt, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, apperrors.Internal("issue refresh token", err)
	}
	if err := s.store.Save(ctx, refresh, user.ID, refreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to record refresh token: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges a recorded refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	invalid := apperrors.New(apperrors.ErrInvalidToken, "Invalid refresh token")

	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", invalid
	}
	ok, err := s.store.Exists(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid
	}

	repo, err := s.users(ctx)
	if err != nil {
		return "", err
	}
	user, err := repo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", invalid
		}
		return "", err
	}
	if !user.IsActive {
		return "", invalid
	}

	access, _, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", apperrors.Internal("issue access token", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Revoking an unknown or already revoked
// token succeeds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.store.Delete(ctx, refreshToken)
}

// Authenticate verifies an access token and returns the caller's identity.
func (s *Service) Authenticate(token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Access denied. No token provided.")
	}
	claims, err := s.tokens.Parse(token, TokenTypeAccess)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Invalid token")
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username, Email: claims.Email}, nil
}

// Profile returns the stored user.
func (s *Service) Profile(ctx context.Context, userID string) (*entities.User, error) {
	repo, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(userID)
}

// UpdateProfile applies the non-nil fields of update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*entities.User, error) {
	repo, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	user, err := repo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	for _, name := range []*string{update.FirstName, update.LastName} {
		if name != nil && utf8.RuneCountInString(strings.TrimSpace(*name)) > entities.MaxNameLength {
			return nil, apperrors.Validation("Names cannot exceed %d characters", entities.MaxNameLength)
		}
	}
	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Avatar != nil {
		user.Avatar = strings.TrimSpace(*update.Avatar)
	}

	if p := update.Preferences; p != nil {
		if p.FavoriteCategories != nil {
			encoded, err := json.Marshal(p.FavoriteCategories)
			if err != nil {
				return nil, apperrors.Validation("Invalid favorite categories")
			}
			user.Preferences.FavoriteCategories = datatypes.JSON(encoded)
		}
		if p.DailyReminder != nil {
			if !ValidClock(p.DailyReminder.Time) {
				return nil, apperrors.Validation("Reminder time must use the HH:MM format")
			}
			user.Preferences.DailyReminder = *p.DailyReminder
		}
		if p.Theme != nil {
			if !p.Theme.Valid() {
				return nil, apperrors.Validation("Theme must be one of light, dark or auto")
			}
			user.Preferences.Theme = *p.Theme
		}
	}

	if err := repo.UpdateProfile(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one and
// revokes every refresh token of the user.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	repo, err := s.users(ctx)
	if err != nil {
		return err
	}
	user, err := repo.GetByID(userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(current, user.PasswordHash); err != nil {
		return apperrors.New(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	hash, err := HashPassword(next, s.config.BcryptCost)
	if err != nil {
		return apperrors.Internal("hash password", err)
	}
	if err := repo.UpdatePasswordHash(userID, hash); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke refresh tokens after password change")
	}
	return nil
}

// ValidClock reports whether v is a 24-hour HH:MM time.
func ValidClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == 5
}
