package importer

import (
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/pkg/errors"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/service/importer"
)

type Controller struct {
	importer Importer
}

func NewController(importer Importer) *Controller {
	return &Controller{importer}
}

// GetTemplate downloads the empty CSV (header only) of a model.
func (uc Controller) GetTemplate(c *web.Context) error {
	model := c.GetParam(reflect.String, "model").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	kind, err := importer.ParseKind(model)
	if err != nil {
		return c.RespondError(err)
	}

	filename, data, err := importer.Template(kind)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	return nil
}

func (uc Controller) Import(c *web.Context) error {
	model := c.GetParam(reflect.String, "model").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	kind, err := importer.ParseKind(model)
	if err != nil {
		return c.RespondError(err)
	}

	table, err := uc.read(c, func(name string, r io.Reader) (importer.Table, error) {
		return importer.Read(name, kind, r)
	})
	if err != nil {
		return c.RespondError(err)
	}

	report, err := uc.importer.Import(c.Ctx, kind, table)
	if err != nil {
		return c.RespondError(err)
	}

	return uc.respond(c, report)
}

func (uc Controller) ImportStudents(c *web.Context) error {
	table, err := uc.read(c, importer.ReadStudents)
	if err != nil {
		return c.RespondError(err)
	}

	report, err := uc.importer.ImportStudents(c.Ctx, table)
	if err != nil {
		return c.RespondError(err)
	}

	return uc.respond(c, report)
}

func (uc Controller) read(c *web.Context, decode func(name string, r io.Reader) (importer.Table, error)) (importer.Table, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return importer.Table{}, web.NewRequestError(errors.New("no file was uploaded"), http.StatusBadRequest)
	}

	f, err := header.Open()
	if err != nil {
		return importer.Table{}, errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	return decode(header.Filename, f)
}

func (uc Controller) respond(c *web.Context, report importer.Report) error {
	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"message": report.Message(),
			"created": report.Created,
			"updated": report.Updated,
			"empty":   report.Empty,
		},
		"status": true,
	}, http.StatusOK)
}
