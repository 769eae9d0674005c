package jwttoken

import (
	authmw "storefront/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims narrows validated claims to what the HTTP middleware needs.
func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	subject := claims.Subject()
	out := &authmw.JWTClaims{
		UserID: subject.UserID,
		Role:   subject.Role,
		JTI:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
