package v1

import (
	"fmt"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// nameFilter applies the name filter shared by the list endpoints of
// named resources. An empty parameter that was explicitly set filters
// for the empty string instead of being skipped.
func nameFilter(query *gorm.DB, setFields []string, name string) *gorm.DB {
	if name != "" {
		return query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", name))
	}

	if slices.Contains(setFields, "Name") {
		return query.Where("name = ''")
	}

	return query
}
