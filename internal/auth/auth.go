package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"driver-portal-api-server/internal/models"
)

// RoleAdmin is the only role the codec issues; applicant accounts never
// receive a credential.
const RoleAdmin = "admin"

// ErrInvalidToken is returned for every verification failure. Expired,
// malformed and signature-mismatch tokens are deliberately not
// distinguished from one another.
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims defines the payload for the admin session JWT.
type JWTClaims struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	LastLogin string `json:"last_login,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed admin session credentials against a
// shared secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue produces a signed token embedding the user identity, expiring ttl
// from now. ExpiresAt on the returned AuthToken is epoch milliseconds.
func (c *Codec) Issue(user models.AdminUser, ttl time.Duration) (models.AuthToken, error) {
	expiresAt := time.Now().Add(ttl)

	claims := &JWTClaims{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if user.LastLogin != nil {
		claims.LastLogin = user.LastLogin.Format(time.RFC3339)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return models.AuthToken{}, err
	}

	return models.AuthToken{
		Token:     signed,
		User:      user,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Every failure collapses to ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (models.AdminUser, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return models.AdminUser{}, ErrInvalidToken
	}

	// The embedded exp has second granularity; the expiry instant itself
	// counts as expired.
	if exp, eerr := claims.GetExpirationTime(); eerr != nil || exp == nil || !time.Now().Before(exp.Time) {
		return models.AdminUser{}, ErrInvalidToken
	}

	user := models.AdminUser{
		ID:       claims.ID,
		Email:    claims.Email,
		FullName: claims.FullName,
	}
	if claims.LastLogin != "" {
		if t, perr := time.Parse(time.RFC3339, claims.LastLogin); perr == nil {
			user.LastLogin = &t
		}
	}
	return user, nil
}

// VerifyWithRole is Verify plus the role claim, for route authorization.
func (c *Codec) VerifyWithRole(tokenString string) (models.AdminUser, string, error) {
	user, err := c.Verify(tokenString)
	if err != nil {
		return models.AdminUser{}, "", err
	}
	claims := &JWTClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return models.AdminUser{}, "", ErrInvalidToken
	}
	return user, claims.Role, nil
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
