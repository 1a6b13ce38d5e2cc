package attendance

import (
	"fmt"
	"net/http"
	"reflect"

	"lunch/backend/foundation/web"
)

type Controller struct {
	registration Registration
}

func NewController(registration Registration) *Controller {
	return &Controller{registration}
}

type RegisterRequest struct {
	PersonCode string `json:"id_persona" form:"id_persona"`
}

// Register records a lunch for the scanned or typed person code.
func (uc Controller) Register(c *web.Context) error {
	var request RegisterRequest

	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.registration.Register(c.Ctx, request.PersonCode)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (uc Controller) GetToday(c *web.Context) error {
	var limit int
	if l, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		limit = *l
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.registration.Today(c.Ctx, limit)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetTicket(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	pdf, err := uc.registration.Ticket(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"ticket_%d.pdf\"", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
	return nil
}

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.registration.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
