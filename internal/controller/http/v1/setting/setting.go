package setting

import (
	"net/http"

	"github.com/pkg/errors"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/entity"
	"lunch/backend/internal/repository/postgres/setting"
	"lunch/backend/internal/service"
)

var logoExtensions = []string{".png", ".jpg", ".jpeg", ".svg"}

type Controller struct {
	setting Setting
	files   Files
}

func NewController(setting Setting, files Files) *Controller {
	return &Controller{setting: setting, files: files}
}

func (uc Controller) GetInfo(c *web.Context) error {
	info, err := uc.setting.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.setting.List(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"info":    info,
			"results": list,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) UpdateAll(c *web.Context) error {
	var request setting.UpdateRequest

	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	if err := uc.setting.UpdateAll(c.Ctx, request); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

// UploadLogo replaces the school logo shown on the client and tickets.
func (uc Controller) UploadLogo(c *web.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "file"), http.StatusBadRequest))
	}

	name, err := uc.files.Upload(file, service.LogoFolder, logoExtensions)
	if err != nil {
		return c.RespondError(err)
	}

	previous, _, err := uc.setting.Get(c.Ctx, entity.SettingLogoFilename)
	if err != nil {
		uc.files.Remove(service.LogoFolder, name)
		return c.RespondError(err)
	}

	if err := uc.setting.Set(c.Ctx, entity.SettingLogoFilename, name); err != nil {
		uc.files.Remove(service.LogoFolder, name)
		return c.RespondError(err)
	}
	uc.files.Remove(service.LogoFolder, previous)

	return c.Respond(map[string]interface{}{
		"data":   map[string]string{"logo": name},
		"status": true,
	}, http.StatusOK)
}
