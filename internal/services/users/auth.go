package users

import (
	"context"
	"errors"
	"fmt"
	"moviecatalog/proj/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims are carried by access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	const op = "users.UserService.Login"
	email = normalizeEmail(email)
	log := s.log.With("op", op, "email", email)

	user, err := s.storage.GetByEmail(ctx, email)
	if err != nil {
		err = storageErr(err)
		if errors.Is(err, ErrUserNotFound) {
			log.Info("unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Info("inactive user")
		return nil, ErrInvalidCredentials
	}

	now := s.opts.Now()
	expiresAt := now.Add(s.opts.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.opts.Secret)
	if err != nil {
		log.Error("Error signing token", "errMsg", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthTokens{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// VerifyToken checks the signature and expiry of an access token.
func (s *UserService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.opts.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
