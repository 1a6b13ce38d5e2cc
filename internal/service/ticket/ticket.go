// Package ticket draws lunch tickets and person QR badges.
package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// Data is what gets printed on one ticket.
type Data struct {
	School      string
	RecordID    int
	PersonCode  string
	PersonName  string
	Department  string
	ControlType string
	Timestamp   string
}

// Text is the content encoded in the ticket QR code.
func (d Data) Text() string {
	return strings.Join([]string{
		fmt.Sprintf("Ticket #%d", d.RecordID),
		d.PersonCode,
		d.PersonName,
		d.Department,
		d.ControlType,
		d.Timestamp,
	}, "\n")
}

const (
	ticketWidth  = 80.0
	ticketHeight = 150.0
	margin       = 5.0
	qrSize       = 40.0
)

// Render returns a single page PDF sized for an 80mm thermal printer.
func Render(d Data) ([]byte, error) {
	png, err := QRCode(d.Text(), 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: ticketWidth, Ht: ticketHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := ticketWidth - 2*margin

	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(width, 6, tr(d.School), "", "C", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width, 5, tr(fmt.Sprintf("Ticket #%d", d.RecordID)), "", 1, "C", false, 0, "")
	pdf.CellFormat(width, 5, d.Timestamp, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	rows := [][2]string{
		{"Codigo", d.PersonCode},
		{"Nombre", d.PersonName},
		{"Dpto", d.Department},
		{"Control", d.ControlType},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(18, 5, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(width-18, 5, tr(row[1]), "", "L", false)
	}

	if err := placeQR(pdf, "ticket", png, (ticketWidth-qrSize)/2, pdf.GetY()+4, qrSize); err != nil {
		return nil, err
	}

	return output(pdf)
}

// QRCode encodes text as a PNG of size pixels.
func QRCode(text string, size int) ([]byte, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encoding qr code")
	}
	return png, nil
}

func placeQR(pdf *gofpdf.Fpdf, name string, png []byte, x, y, size float64) error {
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, size, size, false, opt, 0, "")
	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "placing qr code")
	}
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}
