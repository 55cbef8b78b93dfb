package models

import (
	"time"
)

type Product struct {
	ID                   string      `bson:"_id,omitempty" json:"id"`
	Name                 string      `bson:"name" json:"name" binding:"required"`
	Description          string      `bson:"description" json:"description"`
	Brand                string      `bson:"brand,omitempty" json:"brand,omitempty"`
	Dosage               string      `bson:"dosage,omitempty" json:"dosage,omitempty"`
	PackSize             string      `bson:"packSize,omitempty" json:"packSize,omitempty"`
	Price                float64     `bson:"price" json:"price" binding:"required,gt=0"`
	Pricing              []PriceTier `bson:"pricing,omitempty" json:"pricing,omitempty" binding:"omitempty,dive"`
	Image                string      `bson:"image,omitempty" json:"image,omitempty"`
	RequiresPrescription bool        `bson:"requiresPrescription" json:"requiresPrescription"`
	CreatedAt            time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// PriceTier applies Price to quantities in [Min, Max].
type PriceTier struct {
	Min   int     `bson:"min" json:"min" binding:"gte=1"`
	Max   int     `bson:"max" json:"max" binding:"gtefield=Min"`
	Price float64 `bson:"price" json:"price" binding:"gt=0"`
}

// PriceFor returns the unit price for qty: the first matching tier, else the base price.
func (p Product) PriceFor(qty int) float64 {
	for _, tier := range p.Pricing {
		if qty >= tier.Min && qty <= tier.Max {
			return tier.Price
		}
	}
	return p.Price
}

// ProductPatch carries the fields an admin may change; nil means unchanged.
type ProductPatch struct {
	Name                 *string      `json:"name"`
	Description          *string      `json:"description"`
	Brand                *string      `json:"brand"`
	Dosage               *string      `json:"dosage"`
	PackSize             *string      `json:"packSize"`
	Price                *float64     `json:"price" binding:"omitempty,gt=0"`
	Pricing              *[]PriceTier `json:"pricing"`
	Image                *string      `json:"image"`
	RequiresPrescription *bool        `json:"requiresPrescription"`
}

func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Dosage != nil {
		p.Dosage = *patch.Dosage
	}
	if patch.PackSize != nil {
		p.PackSize = *patch.PackSize
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Pricing != nil {
		p.Pricing = *patch.Pricing
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.RequiresPrescription != nil {
		p.RequiresPrescription = *patch.RequiresPrescription
	}
}
