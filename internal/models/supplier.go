package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type SupplierKind string

const (
	SupplierIndividual SupplierKind = "individual"
	SupplierCompany    SupplierKind = "company"
)

// Supplier is a party expenses are paid to.
type Supplier struct {
	DefaultModel
	Name           string
	NormalizedName string // lower case with accents folded, used for matching
	Kind           SupplierKind
	TaxID          string `gorm:"uniqueIndex"`
	InternalCode   string
	Active         bool
}

func (s *Supplier) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.TaxID = strings.TrimSpace(s.TaxID)
	s.NormalizedName = NormalizeName(s.Name)

	if s.Kind != SupplierIndividual && s.Kind != SupplierCompany {
		return ErrSupplierKindInvalid
	}

	return nil
}

// NormalizeName folds a name for accent and case insensitive
// comparison: "Fundação São João" and "fundacao sao joao" normalize to
// the same string.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// DeactivateOrDeleteSupplier deletes the supplier when no expense
// references it and deactivates it otherwise.
func DeactivateOrDeleteSupplier(tx *gorm.DB, supplier *Supplier) error {
	var count int64
	err := tx.Model(&Expense{}).Where("supplier_id = ?", supplier.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return tx.Delete(supplier).Error
	}

	supplier.Active = false
	return tx.Save(supplier).Error
}
