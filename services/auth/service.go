package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"reelist/internal/database"
	"reelist/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6

	bcryptCost = 10
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_ \-.]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Service validates credentials and issues HS256 bearer tokens carrying
// the user id as their only application claim.
type Service struct {
	store  *database.UserStore
	secret []byte
	ttl    time.Duration
}

// Session is the result of a successful registration or login.
type Session struct {
	UserID   string
	Username string
	Token    string
}

// NewService creates the authentication service. It refuses to start with
// an empty signing secret so the process never issues unverifiable tokens.
func NewService(store *database.UserStore, secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Register creates a new account and returns a fresh session for it.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if len(password) < minPasswordLen {
		return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		JoinDate:     now,
		CreatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrEmailTaken):
			return nil, &DuplicateError{Field: "email"}
		case errors.Is(err, database.ErrUsernameTaken):
			return nil, &DuplicateError{Field: "username"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Username: user.Username, Token: token}, nil
}

// Login validates the email/password pair and returns a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.UserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Username: user.Username, Token: token}, nil
}

// Verify checks the bearer token and returns the user id it was issued for.
func (s *Service) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    now.Add(s.ttl).Unix(),
		"iat":    now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// NormalizeEmail lower-cases and trims an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("must be %d-%d characters", minUsernameLen, maxUsernameLen),
		}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{
			Field:   "username",
			Message: "may only contain letters, numbers, spaces, hyphens, periods, and underscores",
		}
	}
	return nil
}
