// Package reference serves the small name-only tables persons point to.
package reference

import (
	"net/http"
	"reflect"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/repository/postgres"
)

type SaveRequest struct {
	ID   int    `json:"id"   form:"id"`
	Name string `json:"name" form:"name"`
}

type Controller[T any] struct {
	service Service[T]
	build   func(id int, name string) T
}

// NewController serves service. build turns a request into the item saved.
func NewController[T any](service Service[T], build func(id int, name string) T) *Controller[T] {
	return &Controller[T]{service: service, build: build}
}

func (uc Controller[T]) GetList(c *web.Context) error {
	var filter postgres.ListFilter

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

	list, count, err := uc.service.List(c.Ctx, filter)
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

func (uc Controller[T]) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.service.GetByID(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// Save creates the item, or renames it when the body carries an id.
func (uc Controller[T]) Save(c *web.Context) error {
	var request SaveRequest

	if err := c.BindFunc(&request, "Name"); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.service.Save(c.Ctx, uc.build(request.ID, request.Name))
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

func (uc Controller[T]) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.service.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
