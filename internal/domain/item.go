package domain

import (
	"fmt"
	"math"
	"strings"
)

// An inventory line carried on the route. Items are loaded at the pickup
// and unloaded at the drop whose address matches DropoffAddress, or at the
// final drop when it is empty.
type Item struct {
	Name           string
	WeightKg       float64
	VolumeM3       float64
	Quantity       int
	Fragile        bool
	DropoffAddress string
}

// Validate rejects negative or non-finite measurements and fills the
// default quantity of one.
func (it *Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return &InvalidInputError{Field: "items.name", Reason: "must not be empty"}
	}
	if !nonNegative(it.WeightKg) {
		return &InvalidInputError{Field: "items.weight", Reason: fmt.Sprintf("item %q: must be a non-negative number", it.Name)}
	}
	if !nonNegative(it.VolumeM3) {
		return &InvalidInputError{Field: "items.volume", Reason: fmt.Sprintf("item %q: must be a non-negative number", it.Name)}
	}
	if it.Quantity < 0 {
		return &InvalidInputError{Field: "items.quantity", Reason: fmt.Sprintf("item %q: must be >= 1", it.Name)}
	}
	if it.Quantity == 0 {
		it.Quantity = 1
	}
	return nil
}

// Load returns the space the full quantity occupies.
func (it Item) Load() Load {
	q := it.Quantity
	if q <= 0 {
		q = 1
	}
	return Load{
		VolumeM3: it.VolumeM3 * float64(q),
		WeightKg: it.WeightKg * float64(q),
		Items:    q,
	}
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
