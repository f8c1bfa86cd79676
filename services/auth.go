package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"faberlic-mining/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	maxLoginLength    = 64
	minPasswordLength = 6
	// bcrypt refuses longer input
	maxPasswordLength = 72
)

// Claims are the bearer token contents.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	DB       *gorm.DB
	Now      Clock
	HashCost int
	secret   []byte
	ttl      time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, clock Clock) *AuthService {
	if clock == nil {
		clock = SystemClock
	}
	return &AuthService{
		DB:       db,
		Now:      clock,
		HashCost: bcrypt.DefaultCost,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

type AuthResult struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	Account     *models.Account `json:"user"`
}

// NormalizeLogin folds visually identical logins onto one key.
func NormalizeLogin(login string) string {
	return norm.NFC.String(strings.TrimSpace(login))
}

func validateCredentials(login, password string) error {
	if login == "" || len([]rune(login)) > maxLoginLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("login must be 1-%d characters", maxLoginLength))
	}
	if len(password) < minPasswordLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}
	return nil
}

// Register creates the account together with its mining, spin and daily
// reset records, then issues a token.
func (s *AuthService) Register(ctx context.Context, login, password string) (*AuthResult, error) {
	acct, err := s.createAccount(ctx, login, password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(acct)
}

func (s *AuthService) createAccount(ctx context.Context, login, password string, role models.Role) (*models.Account, error) {
	login = NormalizeLogin(login)
	if err := validateCredentials(login, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.Now()
	acct := &models.Account{
		ID:            uuid.NewString(),
		Login:         login,
		PasswordHash:  string(hash),
		Role:          role,
		Balance:       decimal.Zero,
		DailyEarnings: decimal.Zero,
		TotalEarnings: decimal.Zero,
		DepositAmount: decimal.Zero,
		Timestamps:    models.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Account{}).Where("login = ?", login).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrLoginTaken
		}
		// a concurrent registration can still win between count and insert
		if err := tx.Create(acct).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrLoginTaken
			}
			return err
		}
		if err := tx.Create(&models.MiningState{UserID: acct.ID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.SpinState{UserID: acct.ID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.DailyResetMarker{UserID: acct.ID, Date: CalendarDate(now)}).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": acct.ID, "role": role}).Info("account registered")
	return acct, nil
}

// Login verifies the password, stamps last_login and issues a token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = NormalizeLogin(login)

	var acct models.Account
	if err := s.DB.WithContext(ctx).First(&acct, "login = ?", login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.Now()
	acct.LastLogin = &now
	if err := s.DB.WithContext(ctx).Model(&acct).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	return s.issue(&acct)
}

func (s *AuthService) issue(acct *models.Account) (*AuthResult, error) {
	token, err := s.IssueToken(acct.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, TokenType: "bearer", Account: acct}, nil
}

func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature and expiry and returns the user id.
func (s *AuthService) ParseToken(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Now),
		jwt.WithExpirationRequired(),
	)
	var claims Claims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrUnauthorized.WithMessage("token expired")
		}
		return "", ErrUnauthorized
	}
	if claims.UserID == "" {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}

// Authenticate resolves a bearer token to its live account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	userID, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.Account, error) {
	var acct models.Account
	if err := s.DB.WithContext(ctx).First(&acct, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// EnsureAdmin creates the bootstrap administrator, or promotes an existing
// account with that login.
func (s *AuthService) EnsureAdmin(ctx context.Context, login, password string) error {
	login = NormalizeLogin(login)
	var acct models.Account
	err := s.DB.WithContext(ctx).First(&acct, "login = ?", login).Error
	switch {
	case err == nil:
		if acct.IsAdmin() {
			return nil
		}
		return s.DB.WithContext(ctx).Model(&acct).Update("role", models.RoleAdmin).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		_, err = s.createAccount(ctx, login, password, models.RoleAdmin)
		return err
	default:
		return err
	}
}
