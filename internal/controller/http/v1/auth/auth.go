package auth

import (
	"net/http"

	"github.com/pkg/errors"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/auth"
	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/repository/postgres/user"
)

type Controller struct {
	user User
	auth *auth.Auth
}

func NewController(user User, auth *auth.Auth) *Controller {
	return &Controller{user: user, auth: auth}
}

func (uc Controller) SignIn(c *web.Context) error {
	var data user.SignInRequest

	if err := c.BindFunc(&data, "Username", "Password"); err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.user.Authenticate(c.Ctx, data.Username, data.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
		}
		return c.RespondError(err)
	}

	return uc.respondTokens(c, detail)
}

func (uc Controller) RefreshToken(c *web.Context) error {
	var data user.RefreshTokenRequest

	if err := c.BindFunc(&data, "RefreshToken"); err != nil {
		return c.RespondError(err)
	}

	claims, err := uc.auth.ValidateRefreshToken(data.RefreshToken)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	// The role may have changed since the token was issued.
	detail, err := uc.user.GetByID(c.Ctx, claims.UserId)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return c.RespondError(web.NewRequestError(errors.New("user no longer exists"), http.StatusUnauthorized))
		}
		return c.RespondError(err)
	}

	return uc.respondTokens(c, detail)
}

func (uc Controller) respondTokens(c *web.Context, detail entity.User) error {
	var role string
	if detail.Role != nil {
		role = detail.Role.Name
	}

	accessToken, refreshToken, err := uc.auth.GenerateTokens(detail, role)
	if err != nil {
		return c.RespondError(errors.Wrap(err, "generating tokens"))
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"username":      detail.Username,
			"role":          role,
		},
	}, http.StatusOK)
}
