package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/clm-workflow/internal/model"
)

// Parser validates access tokens issued by the platform's auth service and
// extracts the principal. Tokens carry the user and organization ids; all
// permission decisions happen server-side against the identity tables.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type claims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	orgID, err := uuid.Parse(c.OrgID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid org_id claim: %w", err)
	}

	return model.Principal{UserID: userID, OrgID: orgID}, nil
}
