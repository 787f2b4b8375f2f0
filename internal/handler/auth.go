package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/azulmar/beach-map-service/internal/utils"
)

// AuthHandler implements operator login.  The service has a single
// operator account provisioned through configuration (name plus a
// bcrypt password hash); there is no user store of its own.
type AuthHandler struct {
	JWTSecret        string // secret used to sign access tokens
	AccessTTLMin     int    // token lifetime in minutes
	OperatorName     string // configured operator login name
	OperatorPassHash string // bcrypt hash of the operator password
}

// NewAuthHandler constructs an AuthHandler from configuration values.
func NewAuthHandler(secret string, ttlMin int, operatorName, operatorPassHash string) *AuthHandler {
	if secret == "" || operatorName == "" || operatorPassHash == "" {
		panic("incomplete auth configuration passed to NewAuthHandler")
	}
	return &AuthHandler{
		JWTSecret:        secret,
		AccessTTLMin:     ttlMin,
		OperatorName:     operatorName,
		OperatorPassHash: operatorPassHash,
	}
}

// Login handles POST /v1/auth/login.  The body must contain the
// operator name and password; on success a signed access token and
// its expiry are returned.  Wrong credentials yield 401 without
// distinguishing name from password.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Operator string `json:"operator"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Operator != h.OperatorName || !utils.VerifyPassword(h.OperatorPassHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, err := utils.NewAccessToken(h.JWTSecret, body.Operator, "OPERATOR", h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token.Token,
		"expires_at":   token.Exp.Format(time.RFC3339),
	})
}
