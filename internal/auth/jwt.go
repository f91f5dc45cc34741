package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("Given token not valid for any token type")

type claims struct {
	TokenType string `json:"token_type"`
	UserID    uint   `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair is the response of a JWT login.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// JWTIssuer signs and checks HS256 access and refresh tokens.
type JWTIssuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue returns a fresh access/refresh pair for userID.
func (j *JWTIssuer) Issue(userID uint) (TokenPair, error) {
	refresh, err := j.sign(userID, tokenTypeRefresh, j.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := j.sign(userID, tokenTypeAccess, j.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (j *JWTIssuer) Refresh(refresh string) (string, error) {
	c, err := j.parse(refresh)
	if err != nil {
		return "", err
	}
	if c.TokenType != tokenTypeRefresh {
		return "", ErrInvalidToken
	}
	return j.sign(c.UserID, tokenTypeAccess, j.accessTTL)
}

// Verify checks the signature and expiry of a token of either type.
func (j *JWTIssuer) Verify(token string) error {
	_, err := j.parse(token)
	return err
}

// UserID returns the subject of a valid access token.
func (j *JWTIssuer) UserID(access string) (uint, error) {
	c, err := j.parse(access)
	if err != nil {
		return 0, err
	}
	if c.TokenType != tokenTypeAccess {
		return 0, ErrInvalidToken
	}
	return c.UserID, nil
}

func (j *JWTIssuer) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := j.now()
	c := claims{
		TokenType: tokenType,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (j *JWTIssuer) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return j.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
