package models

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 999

type CartLine struct {
	ProductID              string  `bson:"productId" json:"productId"`
	Name                   string  `bson:"name" json:"name"`
	UnitPrice              float64 `bson:"unitPrice" json:"unitPrice"`
	Quantity               int     `bson:"quantity" json:"quantity"`
	ImageRef               string  `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
	IsPrescriptionRequired bool    `bson:"isPrescriptionRequired" json:"isPrescriptionRequired"`
}

func NewCartLine(p Product, qty int) CartLine {
	return CartLine{
		ProductID:              p.ID,
		Name:                   p.Name,
		UnitPrice:              p.PriceFor(qty),
		Quantity:               qty,
		ImageRef:               p.Image,
		IsPrescriptionRequired: p.RequiresPrescription,
	}
}

// ItemCount sums quantities; it is always derived, never stored.
func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// ValidLine reports whether the line's quantity is within [1, MaxLineQuantity].
func (l CartLine) ValidLine() bool {
	return l.Quantity >= 1 && l.Quantity <= MaxLineQuantity
}

func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
