package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries everything the PDF ticket shows.  Purchaser may be
// empty for anonymous chat bookings.
type Receipt struct {
	MuseumName string
	Purchaser  string
	Reference  string
	TotalCost  float64
	ValidUntil time.Time
	Attendees  []string
}

// RenderPDF lays out a single-page ticket receipt with the QR image in
// the top-right corner and returns the document bytes.
func RenderPDF(rc Receipt, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Museum Ticket - "+rc.MuseumName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Ticket ID: "+rc.Reference, "", 1, "L", false, 0, "")
	if rc.Purchaser != "" {
		pdf.CellFormat(0, 7, "Name: "+rc.Purchaser, "", 1, "L", false, 0, "")
	}
	if len(rc.Attendees) > 0 {
		pdf.CellFormat(0, 7, "Attendees: "+strings.Join(rc.Attendees, ", "), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("Total Cost: $%.2f", rc.TotalCost), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Valid until: "+rc.ValidUntil.UTC().Format("Mon, 02 Jan 2006 15:04 MST"), "", 1, "L", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions("qr", pageW-55, 40, 45, 45, false, opts, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Present this QR code at the entrance.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
