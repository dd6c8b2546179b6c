package http

import (
	"crypto/subtle"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/forcemodel/forcesim-backend-go/internal/handler/http/response"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService jwt.Service
	apiKey     string
}

func NewAuthHandler(jwtService jwt.Service, apiKey string) AuthHandler {
	return &AuthHandlerImpl{jwtService: jwtService, apiKey: apiKey}
}

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// Token exchanges the configured API key for a short-lived access token.
func (h *AuthHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		response.Unauthorized(w, "Invalid API key")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken("api")
	if err != nil {
		response.InternalServerError(w, "Failed to generate access token")
		return
	}

	response.Success(w, map[string]any{
		"access_token": token,
		"expires_at":   expiresAt,
	})
}
