package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/askhat/gigledger/internal/model"
)

// Parser validates HMAC-signed access tokens and extracts the principal.
// Tokens carry the profile id in `sub` and the profile role in `role`.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(raw string) (model.Principal, error) {
	var claims jwt.MapClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return model.Principal{}, fmt.Errorf("token has no subject")
	}
	profileID, err := uuid.Parse(subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid subject: %w", err)
	}

	role, _ := claims["role"].(string)
	switch model.Role(role) {
	case model.RoleClient, model.RoleContractor, model.RoleAdmin:
	default:
		return model.Principal{}, fmt.Errorf("unknown role %q", role)
	}

	return model.Principal{ProfileID: profileID, Role: model.Role(role)}, nil
}

// Sign issues a token for the given principal. Used by seeds and tests; the
// service itself only parses.
func (p *Parser) Sign(principal model.Principal) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  principal.ProfileID.String(),
		"role": string(principal.Role),
	})
	return token.SignedString(p.secret)
}
