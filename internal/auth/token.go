package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carry the user id in "sub" and the caller's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier turns HS256 bearer tokens into identities.
type Verifier struct {
	secret   []byte
	elevated []string
}

func NewVerifier(secret string, elevatedRoles []string) *Verifier {
	return &Verifier{secret: []byte(secret), elevated: elevatedRoles}
}

func (v *Verifier) Identity(raw string) (domain.Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: subject %q", ErrInvalidToken, claims.Subject)
	}
	return domain.Identity{
		UserID:   userID,
		Role:     claims.Role,
		Elevated: lo.Contains(v.elevated, claims.Role),
	}, nil
}

// Issue signs a token for userID. The login flow lives elsewhere; this is
// used by tooling and tests.
func (v *Verifier) Issue(userID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
