package catalog

import id "storefront/pkg/domain"

// Money is an amount in minor currency units (fils, cents).
type Money int64

// Variant is a concrete size/color SKU of a product.
type Variant struct {
	Key        string            `json:"key" yaml:"key"`
	Price      Money             `json:"price" yaml:"price"`
	SalePrice  *Money            `json:"salePrice,omitempty" yaml:"salePrice,omitempty"`
	Stock      int               `json:"stock" yaml:"stock"`
	Image      string            `json:"image,omitempty" yaml:"image,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Product is the catalog record the cart and wishlist snapshot from.
type Product struct {
	ID        id.ProductID `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Slug      string       `json:"slug" yaml:"slug"`
	Image     string       `json:"image,omitempty" yaml:"image,omitempty"`
	Price     Money        `json:"price" yaml:"price"`
	SalePrice *Money       `json:"salePrice,omitempty" yaml:"salePrice,omitempty"`
	Stock     int          `json:"stock" yaml:"stock"`
	Category  string       `json:"category,omitempty" yaml:"category,omitempty"`
	Variants  []Variant    `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// EffectivePrice is the sale price when one is set, else the list price.
func (p Product) EffectivePrice() Money {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

func (v Variant) EffectivePrice() Money {
	if v.SalePrice != nil {
		return *v.SalePrice
	}
	return v.Price
}

// VariantKey returns the domain key for v.
func (v Variant) VariantKey() id.VariantKey {
	return id.Variant(v.Key)
}

// FindVariant looks up a variant by key. NoVariant never matches.
func (p Product) FindVariant(key id.VariantKey) (*Variant, bool) {
	k, ok := key.Key()
	if !ok {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].Key == k {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// ImageFor prefers the variant image and falls back to the product image.
func (p Product) ImageFor(v *Variant) string {
	if v != nil && v.Image != "" {
		return v.Image
	}
	return p.Image
}
