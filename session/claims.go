package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// RoleAdmin is matched case-insensitively; the backend has been observed
// emitting both "ADMIN" and "admin".
const RoleAdmin = "ADMIN"

// DecodeRole reads the role claim out of the credential's payload segment.
// The signature is never verified here: verification is the backend's job,
// and the decoded role is only a routing hint. A token that cannot be decoded
// is treated the same as a missing credential by callers.
func DecodeRole(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", errors.Wrap(err, "[DecodeRole] malformed credential")
	}
	role, _ := claims["role"].(string)
	return role, nil
}

func IsAdmin(role string) bool {
	return strings.EqualFold(role, RoleAdmin)
}
