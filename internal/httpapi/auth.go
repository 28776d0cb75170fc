package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/xid"
)

const (
	tokenIssuer  = "cashflowbot"
	tokenSubject = "owner"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthManager guards the report API with one owner password. Only the bcrypt
// hash of the password is kept in memory.
type AuthManager struct {
	secret       []byte
	tokenTTL     time.Duration
	passwordHash string
	now          func() time.Time
}

func NewAuthManager(secret string, tokenTTL time.Duration, password string) (*AuthManager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("report secret must be provided")
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, errors.New("report password must be provided")
	}
	hash := password
	if !isPasswordHash(password) {
		var err error
		if hash, err = hashPassword(password); err != nil {
			return nil, err
		}
	}
	return &AuthManager{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		passwordHash: hash,
		now:          time.Now,
	}, nil
}

func (a *AuthManager) Login(req domain.LoginRequest) (domain.LoginResponse, error) {
	if !verifyPassword(a.passwordHash, req.Password) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	expiresAt := a.now().UTC().Add(a.tokenTTL)
	token, err := a.sign(expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

// ParseToken validates signature, expiry and issuer and returns the token id.
func (a *AuthManager) ParseToken(tokenStr string) (string, error) {
	claims := &jwtlib.RegisteredClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer(tokenIssuer), jwtlib.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub != tokenSubject {
		return "", errors.New("invalid token subject")
	}
	return claims.ID, nil
}

func (a *AuthManager) sign(expiresAt time.Time) (string, error) {
	claims := jwtlib.RegisteredClaims{
		ID:        xid.New("tok"),
		Subject:   tokenSubject,
		IssuedAt:  jwtlib.NewNumericDate(a.now().UTC()),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		Issuer:    tokenIssuer,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
