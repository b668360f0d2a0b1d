package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	"github.com/Dosada05/bridge-judging/utils"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	jwtClaimUserID    = "user_id"
	jwtClaimRole      = "role"
	jwtClaimName      = "name"
	jwtClaimSessionID = "sid"
)

type AuthService interface {
	SignIn(ctx context.Context, creds models.Credentials) (*SignInResult, error)
	SignOut(ctx context.Context, principal *Principal) error
	// Resolve validates a bearer token and loads the current user record.
	Resolve(ctx context.Context, token string) (*Principal, error)
}

type SignInResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
	Home      string       `json:"home"`
}

// Principal is the signed-in user attached to a request.
type Principal struct {
	User      models.User
	SessionID string
	ExpiresAt time.Time
}

type authService struct {
	userRepo  repositories.UserRepository
	sessions  SessionStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, sessions SessionStore, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// HomeRoute is the landing view of a role.
func HomeRoute(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "/dashboard"
	case models.RoleJudge:
		return "/scoring"
	default:
		return "/check-in"
	}
}

func (s *authService) SignIn(ctx context.Context, creds models.Credentials) (*SignInResult, error) {
	email := utils.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.Role.Valid() {
		s.logger.WarnContext(ctx, "sign-in for user without a valid role", slog.String("uid", user.UID))
		return nil, ErrAuthenticationFailed
	}

	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    user.UID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	}

	claims := jwt.MapClaims{
		jwtClaimUserID:    user.UID,
		jwtClaimRole:      user.Role,
		jwtClaimName:      user.Name,
		jwtClaimSessionID: session.ID,
		"exp":             session.ExpiresAt.Unix(),
		"iat":             now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	user.PasswordHash = ""
	s.logger.InfoContext(ctx, "user signed in", slog.String("uid", user.UID), slog.String("role", string(user.Role)))

	return &SignInResult{
		Token:     tokenString,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Home:      HomeRoute(user.Role),
	}, nil
}

func (s *authService) SignOut(ctx context.Context, principal *Principal) error {
	if principal == nil {
		return ErrAuthenticationFailed
	}
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrAuthenticationFailed
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed out", slog.String("uid", principal.User.UID))
	return nil
}

func (s *authService) Resolve(ctx context.Context, tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrAuthenticationFailed
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationFailed
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	uid, _ := claims[jwtClaimUserID].(string)
	sid, _ := claims[jwtClaimSessionID].(string)
	if uid == "" || sid == "" {
		return nil, ErrAuthenticationFailed
	}

	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != uid {
		return nil, ErrAuthenticationFailed
	}

	// Роль определяется по актуальной записи пользователя, а не по токену.
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load user %s: %w", uid, err)
	}
	if !user.Role.Valid() {
		return nil, ErrAuthenticationFailed
	}
	user.PasswordHash = ""

	return &Principal{
		User:      *user,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
