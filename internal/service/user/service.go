package user_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeActivate = "activate"
	purposeSession  = "session"

	activationTTL = 72 * time.Hour
	sessionTTL    = 14 * 24 * time.Hour
)

type Claims struct {
	UserID  int64  `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type userService struct {
	users   repository.UserRepository
	mailer  service.Mailer
	secret  []byte
	baseURL string
	now     func() time.Time
	log     *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	mailer service.Mailer,
	secret string,
	baseURL string,
	log *zap.Logger,
) service.UserService {
	return &userService{
		users:   users,
		mailer:  mailer,
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		log:     log,
	}
}

// Register stores an inactive user and mails the activation link.
func (s *userService) Register(ctx context.Context, in service.Registration) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("email", "email %s is already registered", email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Birthdate:    in.Birthdate,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID))
	if err := s.sendActivation(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendActivation mails a fresh activation link to an account that never
// confirmed its email. Unknown and confirmed addresses are ignored, so the
// form does not reveal which emails are registered.
func (s *userService) ResendActivation(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsActive || user.EmailConfirmed {
		return nil
	}
	return s.sendActivation(ctx, user)
}

func (s *userService) sendActivation(ctx context.Context, user *models.User) error {
	token, err := s.sign(user.ID, purposeActivate, activationTTL)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Hallo %s,\n\nBevestig je account via onderstaande link:\n%s/activate/%s\n\nTot binnenkort in Open Gym!",
		user.FirstName, s.baseURL, token)
	if err := s.mailer.EmailUser(ctx, user, "Activeer je Open Gym account", body); err != nil {
		return fmt.Errorf("send activation mail: %w", err)
	}
	return nil
}

func (s *userService) Activate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token, purposeActivate)
	if err != nil {
		return nil, apperr.Denied("invalid activation link")
	}
	if err := s.users.Activate(ctx, claims.UserID); err != nil {
		return nil, err
	}
	s.log.Info("user activated", zap.Int64("user_id", claims.UserID))
	return s.users.GetByID(ctx, claims.UserID)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Denied("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Denied("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Denied("account is not activated")
	}
	return user, nil
}

func (s *userService) IssueSessionToken(user *models.User) (string, error) {
	return s.sign(user.ID, purposeSession, sessionTTL)
}

func (s *userService) UserFromSessionToken(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}
	claims, err := s.parse(token, purposeSession)
	if err != nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil
	}
	return user
}

func (s *userService) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	return s.users.GetByIDs(ctx, ids)
}

func (s *userService) sign(userID int64, purpose string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "opengym",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *userService) parse(token, purpose string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Purpose != purpose {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
