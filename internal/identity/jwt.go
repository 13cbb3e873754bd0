// Package identity adapts the external identity provider. The provider issues
// HS256-signed bearer tokens carrying the user ID in the subject claim and an
// optional role claim; anything that does not verify maps to
// domain.ErrInvalidToken.
package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oneshowhq/oneshow/internal/domain"
)

const adminRole = "admin"

type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
	}
}

func (v *JWTVerifier) VerifyToken(_ context.Context, token string) (domain.Identity, error) {
	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrInvalidToken
			}

			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	role, _ := claims["role"].(string)

	return domain.Identity{
		UserID: subject,
		Admin:  role == adminRole,
	}, nil
}
