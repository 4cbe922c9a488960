package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// MatchRule maps free text supplier names to supplier records. Match is
// a glob pattern, rules are applied in priority order.
type MatchRule struct {
	DefaultModel
	Supplier   Supplier `json:"-"`
	SupplierID uuid.UUID
	Priority   uint
	Match      string
}

// ResolveSupplier resolves a free text supplier name to a supplier
// record. Match rules are tried in priority order first, then an accent
// and case insensitive name comparison. Returns nil without an error
// when nothing matches.
func ResolveSupplier(tx *gorm.DB, name string) (*Supplier, error) {
	var rules []MatchRule
	err := tx.Order("priority asc, match asc").Find(&rules).Error
	if err != nil {
		return nil, err
	}

	// Rules are in priority order, the first match wins
	for _, rule := range rules {
		if glob.Glob(rule.Match, name) {
			var supplier Supplier
			err = tx.First(&supplier, rule.SupplierID).Error
			if err != nil {
				return nil, err
			}

			return &supplier, nil
		}
	}

	var supplier Supplier
	err = tx.Where("normalized_name = ?", NormalizeName(name)).First(&supplier).Error
	if errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &supplier, nil
}
