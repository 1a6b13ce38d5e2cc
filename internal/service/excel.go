package service

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"lunch/backend/internal/repository/postgres/report"
)

const reportSheet = "Reporte"

var reportHeaders = []string{"ID", "Fecha y hora", "Código", "Nombre", "Departamento", "Tipo de persona", "Tipo de control"}

// ReportToExcel writes the report rows into a new workbook.
func ReportToExcel(rows []report.GetListResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}

	for i, header := range reportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
	}
	if err := f.SetCellStyle(reportSheet, "A1", fmt.Sprintf("%c1", 'A'+len(reportHeaders)-1), style); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}

	rowNum := 2
	for _, entry := range rows {
		values := []interface{}{
			entry.ID,
			entry.Timestamp,
			entry.PersonCode,
			entry.PersonName,
			entry.Department,
			entry.PersonType,
			entry.ControlType,
		}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", rowNum)
		}
		rowNum++
	}

	_ = f.SetColWidth(reportSheet, "B", "B", 24)
	_ = f.SetColWidth(reportSheet, "D", "D", 36)
	_ = f.SetColWidth(reportSheet, "E", "G", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "saving workbook")
	}

	return buf, nil
}
