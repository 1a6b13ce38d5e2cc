package backup

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/pkg/errors"

	"lunch/backend/foundation/web"
)

type Controller struct {
	backup Backup
}

func NewController(backup Backup) *Controller {
	return &Controller{backup}
}

func (uc Controller) GetList(c *web.Context) error {
	list, err := uc.backup.List()
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

// Create stores a new backup in the server backup folder.
func (uc Controller) Create(c *web.Context) error {
	name, err := uc.backup.Create(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   map[string]string{"name": name},
		"status": true,
	}, http.StatusCreated)
}

func (uc Controller) Download(c *web.Context) error {
	data, name, err := uc.backup.Download(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Data(http.StatusOK, "application/gzip", data)
	return nil
}

func (uc Controller) RestoreUpload(c *web.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.New("no file was uploaded"), http.StatusBadRequest))
	}

	f, err := header.Open()
	if err != nil {
		return c.RespondError(errors.Wrap(err, "opening upload"))
	}
	defer f.Close()

	if err := uc.backup.RestoreUpload(c.Ctx, header.Filename, f); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "database restored",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) RestoreFile(c *web.Context) error {
	name := c.GetParam(reflect.String, "name").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.backup.RestoreFile(c.Ctx, name); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   fmt.Sprintf("database restored from %s", name),
		"status": true,
	}, http.StatusOK)
}
