package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrTicketInvalid  = errors.New("join ticket is invalid or expired")
	ErrTicketMismatch = errors.New("join ticket was issued for another user or table")
)

// DefaultTicketTTL bounds how long a freshly created table waits for its device.
const DefaultTicketTTL = 5 * time.Minute

// TicketService signs and checks the tickets a device presents when it joins the
// table it created.
type TicketService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	if issuer == "" {
		issuer = "concentration"
	}
	return &TicketService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a ticket that lets userID join matchID.
func (s *TicketService) Issue(userID, matchID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket service is nil")
	}
	if userID == "" || matchID == "" {
		return "", fmt.Errorf("user and match are required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("ticket secret is not configured")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"mid": matchID,
		"exp": s.now().Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry, issuer and that the ticket names userID and matchID.
func (s *TicketService) Verify(ticket, userID, matchID string) error {
	if s == nil || len(s.secret) == 0 {
		return ErrTicketInvalid
	}
	token, err := jwt.Parse(ticket, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrTicketInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyExpiresAt(s.now().Unix(), true) || !claims.VerifyIssuer(s.issuer, true) {
		return ErrTicketInvalid
	}
	if claims["sub"] != userID || claims["mid"] != matchID {
		return ErrTicketMismatch
	}
	return nil
}
