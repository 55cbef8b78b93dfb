// Package invoice renders a printable PDF receipt for a placed order.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"edpharma/models"
)

// QRPayload is what the receipt's QR code encodes.
func QRPayload(o models.Order) string {
	return fmt.Sprintf("edpharma:order:%s:%.2f", o.ID, o.Total)
}

func Render(o models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(QRPayload(o), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Order "+o.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Order: "+o.ID)
	pdf.Ln(6)
	pdf.Cell(0, 7, "Placed: "+o.CreatedAt.UTC().Format("02 Jan 2006 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Status: "+string(o.Status))
	pdf.Ln(10)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 15, 40, 40, false, imageOpts, 0, "")

	addr := o.ShippingAddress
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, "Ship to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{
		addr.FullName,
		addr.Address.Address,
		fmt.Sprintf("%s, %s %s", addr.City, addr.State, addr.ZipCode),
		addr.Email,
		addr.Phone,
	} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range o.Items {
		name := item.Name
		if item.IsPrescriptionRequired {
			name += " (Rx)"
		}
		pdf.CellFormat(95, 8, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.UnitPrice*float64(item.Quantity)), "1", 1, "R", false, 0, "")
	}

	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", o.Subtotal},
		{"Tax", o.Tax},
		{"Shipping", o.ShippingCost},
		{"Total", o.Total},
	}
	for _, t := range totals {
		if t.label == "Total" {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(150, 8, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(t.value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	payment := "Paid with " + o.Payment.DisplayName
	if o.Payment.Type == models.PaymentCard {
		payment += " ending in " + o.Payment.Last4
	}
	pdf.Cell(0, 7, tr(payment))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
