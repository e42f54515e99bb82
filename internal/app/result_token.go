package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ResultSigner issues HS256 tokens attesting a verdict so clients can check it offline.
type ResultSigner struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewResultSigner(secret, issuer string, ttl time.Duration) *ResultSigner {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultSigner{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Sign returns a token for the given player and result.
func (s *ResultSigner) Sign(userID string, r *Result) (string, error) {
	if s == nil {
		return "", fmt.Errorf("result signer is nil")
	}
	if s.secret == "" {
		return "", fmt.Errorf("result secret is not configured")
	}
	if r == nil {
		return "", fmt.Errorf("result is required")
	}

	claims := jwt.MapClaims{
		"iss":     s.issuer,
		"sub":     userID,
		"gid":     r.GameID,
		"card":    r.Guess.Card,
		"value":   r.Guess.Value,
		"won":     r.Verdict.Won,
		"deduced": r.Guess.Deduced,
		"probes":  len(r.Clues),
		"exp":     s.now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Parse validates a token issued by Sign and returns its claims.
func (s *ResultSigner) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid result token")
	}
	return claims, nil
}
