package ticket

import (
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
)

// Badge is one person on a printable QR sheet.
type Badge struct {
	Code string
	Name string
}

const (
	badgeColumns = 3
	badgeWidth   = 60.0
	badgeHeight  = 68.0
	badgeQR      = 48.0
)

// Sheet lays out QR badges on A4 pages, three per row. The QR code of each
// badge encodes the person code the registration screen scans.
func Sheet(title string, badges []Badge) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageHeight := pdf.GetPageSize()

	newPage := func() float64 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "C", false, 0, "")
		return pdf.GetY() + 2
	}

	y := newPage()
	for i, b := range badges {
		col := i % badgeColumns
		if col == 0 && i > 0 {
			y += badgeHeight
			if y+badgeHeight > pageHeight-15 {
				y = newPage()
			}
		}
		x := 15 + float64(col)*badgeWidth

		png, err := QRCode(b.Code, 256)
		if err != nil {
			return nil, err
		}
		if err := placeQR(pdf, fmt.Sprintf("badge-%d", i), png, x+(badgeWidth-badgeQR)/2, y, badgeQR); err != nil {
			return nil, err
		}

		pdf.SetXY(x, y+badgeQR+1)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(badgeWidth, 5, tr(b.Code), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(badgeWidth, 4, tr(b.Name), "", "C", false)
	}

	return output(pdf)
}
