package domain

import (
	"encoding/json"
	"strings"
)

// DefaultVariantSentinel is how a variant-less wishlist entry is written to
// storage and to the wire.
const DefaultVariantSentinel = "default"

// VariantKey is either NoVariant (the zero value) or a concrete variant key.
// Cart lines and wishlist entries share this type so "absent", "" and the
// "default" sentinel all collapse into the same key.
type VariantKey struct {
	key string
}

// NoVariant is the key of a product line without a selected variant.
var NoVariant = VariantKey{}

// Variant returns the key of a concrete variant. Blank input and the
// sentinel both yield NoVariant.
func Variant(key string) VariantKey {
	key = strings.TrimSpace(key)
	if key == DefaultVariantSentinel {
		return NoVariant
	}
	return VariantKey{key: key}
}

// IsNone reports whether this is the variant-less key.
func (v VariantKey) IsNone() bool { return v.key == "" }

// Key returns the raw variant key and whether one is present.
func (v VariantKey) Key() (string, bool) { return v.key, v.key != "" }

// String renders NoVariant as the sentinel.
func (v VariantKey) String() string {
	if v.IsNone() {
		return DefaultVariantSentinel
	}
	return v.key
}

func (v VariantKey) MarshalJSON() ([]byte, error) {
	if v.IsNone() {
		return []byte("null"), nil
	}
	return json.Marshal(v.key)
}

// UnmarshalJSON accepts null, "", "default" and a key string.
func (v *VariantKey) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = NoVariant
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Variant(s)
	return nil
}

// LineKey is the uniqueness key of a cart line or wishlist entry.
type LineKey struct {
	ProductID ProductID
	Variant   VariantKey
}

func NewLineKey(productID ProductID, variant VariantKey) LineKey {
	return LineKey{ProductID: productID, Variant: variant}
}

func (k LineKey) String() string {
	return k.ProductID.String() + ":" + k.Variant.String()
}
