package report

import (
	"fmt"
	"net/http"
	"time"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/repository/postgres/report"
	"lunch/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Controller struct {
	report Report
}

func NewController(report Report) *Controller {
	return &Controller{report}
}

func (uc Controller) GetList(c *web.Context) error {
	var filter report.Filter

	if err := c.BindFunc(&filter); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.report.GetList(c.Ctx, filter)
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

// Export downloads the filtered report as an .xlsx workbook.
func (uc Controller) Export(c *web.Context) error {
	var filter report.Filter

	if err := c.BindFunc(&filter); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.report.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	buf, err := service.ReportToExcel(list)
	if err != nil {
		return c.RespondError(err)
	}

	filename := fmt.Sprintf("reporte_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	return nil
}
