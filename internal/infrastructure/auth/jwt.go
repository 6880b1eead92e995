package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orris-inc/warden/internal/shared/biztime"
)

const issuer = "warden"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims identifies a user session. Roles and account state are looked up
// on every request, so the token only carries identifiers.
type Claims struct {
	UserID    uint   `json:"uid"`
	TenantID  uint   `json:"tid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(secret string, accessExpMinutes int) *JWTService {
	if accessExpMinutes <= 0 {
		accessExpMinutes = 120
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    time.Duration(accessExpMinutes) * time.Minute,
	}
}

func (s *JWTService) Issue(userID, tenantID uint, sessionID string) (*IssuedToken, error) {
	now := biztime.NowUTC()
	exp := now.Add(s.ttl)

	claims := &Claims{
		UserID:    userID,
		TenantID:  tenantID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &IssuedToken{Token: signed, ExpiresAt: exp}, nil
}

// Verify returns ErrTokenExpired or ErrTokenInvalid wrapped with the parser's reason.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(biztime.NowUTC),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}
