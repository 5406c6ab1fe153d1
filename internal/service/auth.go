package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkarip/imagewall/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpLength   = 4
	otpLifetime = 10 * time.Minute
	tokenMaxAge = 7 * 24 * time.Hour
)

// AuthService handles signup with OTP verification, login, and JWT session
// tokens.
type AuthService struct {
	users      domain.UserRepository
	mailer     OTPMailer
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, mailer OTPMailer, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		mailer:     mailer,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Signup creates or refreshes an unverified account and mails it a one-time
// code. Signing up again before verification reissues the code; a verified
// account is rejected with ErrDuplicateEmail.
func (s *AuthService) Signup(ctx context.Context, name, email, phone, password string) error {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	password = strings.TrimSpace(password)

	if name == "" || email == "" || phone == "" {
		return fmt.Errorf("%w: name, email, and phone are required", domain.ErrInvalidInput)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	otp, err := generateOTP(otpLength)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Verified {
			return domain.ErrDuplicateEmail
		}
		existing.Name = name
		existing.Phone = phone
		existing.PasswordHash = string(hash)
		existing.OTP = otp
		existing.OTPExpiresAt = time.Now().Add(otpLifetime)
		if err := s.users.Update(ctx, existing); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		user := &domain.User{
			Name:         name,
			Email:        email,
			Phone:        phone,
			PasswordHash: string(hash),
			OTP:          otp,
			OTPExpiresAt: time.Now().Add(otpLifetime),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
	default:
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, email, name, otp); err != nil {
		// The account exists and a new code can be requested by signing up
		// again, so mail failure is surfaced but nothing is rolled back.
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP marks the account verified when the submitted code matches the
// pending one and has not expired.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" {
		return fmt.Errorf("%w: email and otp are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: invalid otp", domain.ErrInvalidInput)
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.OTP == "" || user.OTP != otp || time.Now().After(user.OTPExpiresAt) {
		return fmt.Errorf("%w: invalid otp", domain.ErrInvalidInput)
	}

	user.Verified = true
	user.OTP = ""
	user.OTPExpiresAt = time.Time{}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	slog.Info("account verified", "email", email)
	return nil
}

// Login verifies credentials and returns a signed JWT token string.
// Unverified accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	if !user.Verified {
		return "", fmt.Errorf("%w: account not verified, complete signup first", domain.ErrInvalidInput)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}
	return token, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: old password is incorrect", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ValidateToken parses and validates a JWT token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return userID, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenMaxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// generateOTP returns a random numeric code of the given length.
func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}
