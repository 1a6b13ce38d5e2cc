package person

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/pkg/errors"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/repository/postgres/person"
	"lunch/backend/internal/service"
	"lunch/backend/internal/service/ticket"
)

const qrSize = 256

type Controller struct {
	person Person
	photos Photos
}

func NewController(person Person, photos Photos) *Controller {
	return &Controller{person: person, photos: photos}
}

func (uc Controller) filter(c *web.Context) (person.Filter, error) {
	var filter person.Filter

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
	if departmentId, ok := c.GetQueryFunc(reflect.Int, "department_id").(*int); ok {
		filter.DepartmentID = departmentId
	}

	return filter, c.ValidQuery()
}

func (uc Controller) GetList(c *web.Context) error {
	filter, err := uc.filter(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.person.GetList(c.Ctx, filter)
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

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.person.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// Search looks persons up by name or code for the registration screen.
func (uc Controller) Search(c *web.Context) error {
	list, err := uc.person.Search(c.Ctx, c.Query("q"))
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Create(c *web.Context) error {
	var request person.CreateRequest

	if err := c.BindFunc(&request, "ID", "FullName", "Sex", "DepartmentID", "PersonTypeID", "ControlTypeID"); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.person.Create(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (uc Controller) Update(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request person.UpdateRequest

	if err := c.BindFunc(&request, "FullName", "Sex", "DepartmentID", "PersonTypeID", "ControlTypeID"); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	if err := uc.person.Update(c.Ctx, request); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.person.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) UploadPhoto(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "file"), http.StatusBadRequest))
	}

	name, err := uc.photos.UploadPhoto(file)
	if err != nil {
		return c.RespondError(err)
	}

	previous, err := uc.person.UpdatePhoto(c.Ctx, id, name)
	if err != nil {
		uc.photos.Remove(service.PhotoFolder, name)
		return c.RespondError(err)
	}
	uc.photos.Remove(service.PhotoFolder, previous)

	return c.Respond(map[string]interface{}{
		"data":   map[string]string{"photo": name},
		"status": true,
	}, http.StatusOK)
}

// GetQrCode returns the QR code PNG of a person code.
func (uc Controller) GetQrCode(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.person.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	png, err := ticket.QRCode(detail.ID, qrSize)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"qr_%s.png\"", detail.ID))
	c.Data(http.StatusOK, "image/png", png)
	return nil
}

// GetQrCodeList renders a printable sheet with the QR badge of every person
// matching the list filter.
func (uc Controller) GetQrCodeList(c *web.Context) error {
	filter, err := uc.filter(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, _, err := uc.person.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	badges := make([]ticket.Badge, 0, len(list))
	for _, p := range list {
		badges = append(badges, ticket.Badge{Code: p.ID, Name: p.FullName})
	}

	pdf, err := ticket.Sheet("QR codes", badges)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "attachment; filename=\"qr_personas.pdf\"")
	c.Data(http.StatusOK, "application/pdf", pdf)
	return nil
}
