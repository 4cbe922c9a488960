package models

import (
	"strings"

	"gorm.io/gorm"
)

// Employee is a staff member that can request or justify expenses.
type Employee struct {
	DefaultModel
	Name       string
	Email      string `gorm:"uniqueIndex"`
	Category   string
	Department string
	Active     bool
}

func (e *Employee) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	return nil
}
