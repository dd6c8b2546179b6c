package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(subject string) (token string, expiresAt int64, err error)
	GenerateStreamToken(subject, runID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (runID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(subject string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"type": "access",
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for one run's event
// stream. EventSource cannot set headers, so the token travels as a
// query parameter instead.
func (j *JWTService) GenerateStreamToken(subject, runID string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":    subject,
		"run_id": runID,
		"type":   "stream",
		"exp":    expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateStreamToken checks a stream token and returns the run it grants.
func (j *JWTService) ValidateStreamToken(tokenString string) (runID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "stream" {
		return "", jwt.ErrInvalidJWT()
	}

	runIDVal, ok := token.Get("run_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	runID, ok = runIDVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return runID, nil
}
