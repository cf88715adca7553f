package core

import "strings"

// Category classifies transactions and budgets. The zero value is not a
// valid category.
type Category int

const (
	Food Category = iota + 1
	Rent
	Transport
	Shopping
	Entertainment
	Other
)

var categoryNames = [...]string{
	Food:          "Food",
	Rent:          "Rent",
	Transport:     "Transport",
	Shopping:      "Shopping",
	Entertainment: "Entertainment",
	Other:         "Other",
}

// Categories returns every category in display order. Category-ordered
// outputs iterate this slice.
func Categories() []Category {
	return []Category{Food, Rent, Transport, Shopping, Entertainment, Other}
}

func (c Category) String() string {
	if !c.Valid() {
		return ""
	}
	return categoryNames[c]
}

func (c Category) Valid() bool {
	return c >= Food && c <= Other
}

// ParseCategory matches the exact category name submitted by the select.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if categoryNames[c] == s {
			return c, nil
		}
	}
	return 0, ErrInvalidCategory
}
