package auth

import (
	"errors"
	"strconv"
	"time"

	"bankcards/internal/models"
	"bankcards/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	tokenIssuer     = "bankcards-api"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service interface {
	Login(username, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	ParseToken(tokenStr string) (*models.UserClaims, error)
}

type service struct {
	users         repositories.UserRepository
	jwtSecret     string
	refreshSecret string
}

func NewService(users repositories.UserRepository, jwtSecret, refreshSecret string) Service {
	return &service{
		users:         users,
		jwtSecret:     jwtSecret,
		refreshSecret: refreshSecret,
	}
}

func (s *service) Login(username, password string) (*models.User, string, string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		logrus.Debugf("login failed: user %q not found", username)
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logrus.Debugf("login failed: wrong password for user %d", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	claims, err := parseWithSecret(refreshToken, s.refreshSecret)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	return s.generateTokens(user)
}

func (s *service) ParseToken(tokenStr string) (*models.UserClaims, error) {
	return parseWithSecret(tokenStr, s.jwtSecret)
}

func (s *service) generateTokens(user *models.User) (string, string, error) {
	access, err := signToken(user, s.jwtSecret, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := signToken(user, s.refreshSecret, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func signToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
		UserID: user.ID,
		Role:   user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseWithSecret(tokenStr, secret string) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
