package user

import (
	"fmt"
	"net/http"
	"reflect"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/auth"
	"lunch/backend/internal/repository/postgres/user"
)

type Controller struct {
	user User
}

func NewController(user User) *Controller {
	return &Controller{user}
}

func (uc Controller) GetUserList(c *web.Context) error {
	var filter user.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = search
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.user.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetUserDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.user.GetByID(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetRoles(c *web.Context) error {
	list, err := uc.user.Roles(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

// SaveUser creates a user, or edits it when the body carries an id.
func (uc Controller) SaveUser(c *web.Context) error {
	var request user.SaveRequest

	if err := c.BindFunc(&request, "Username", "RoleID"); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.user.Save(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	status := http.StatusOK
	if request.ID == 0 {
		status = http.StatusCreated
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, status)
}

func (uc Controller) DeleteUser(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	if err := uc.user.Delete(c.Ctx, id, claims.UserId); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ChangePassword(c *web.Context) error {
	var request user.ChangePasswordRequest

	if err := c.BindFunc(&request, "UserID", "NewPassword", "ConfirmPassword"); err != nil {
		return c.RespondError(err)
	}

	username, err := uc.user.ChangePassword(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   fmt.Sprintf("password of %s changed", username),
		"status": true,
	}, http.StatusOK)
}
