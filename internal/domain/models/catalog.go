package models

import (
	"slices"
	"strings"
)

const (
	// MinQuantity and MaxQuantity bound every quantity selector on the form.
	MinQuantity = 0
	MaxQuantity = 20
)

// StandardItems enumerates the predefined wastage items in display order.
// Submission payloads list standard items in this order.
var StandardItems = []string{
	"BALTIC",
	"CIABATTA LOAF",
	"CIABATTA ROLLS",
	"CHOC CROISSANT",
	"CLOUD 9",
	"CROISSANT",
	"DOUBLE LIGHT RYE TIN",
	"DOUBLE MULTIGRAIN TIN",
	"DOUBLE WHITE HIGH TOP",
	"FIG, FENNEL & WALNUT",
	"FOCACCIA",
	"LIGHT RYE TIN",
	"MULTIGRAIN CASA",
	"OLIVE CASA",
	"PAYSAN",
	"PIES - REGULAR",
	"PIES - PREMIUM",
	"FRUIT MINCE TART PACK",
	"FRUIT MINCE TART SINGLE",
	"POPPY CASA",
	"PREMIUM",
	"REGULAR",
	"RYE CASA",
	"SAUSAGE ROLLS",
	"SCHWARZBROT",
	"SESAME CASA",
	"SESAME TIN",
	"SPECIALTY LOAF",
	"SPELT",
	"SPICED FRUIT",
	"SPICED FRUIT CASA",
	"TURKISH LOAF",
	"TURKISH ROLLS",
	"VEGAN/VEGETARIAN",
	"WHITE CASA",
	"WHITE CASA STICK",
	"WHITE HIGN TOP",
	"WHOLEMEAL CASA",
}

// Stores lists the store codes an employee can report for.
var Stores = []string{"NT", "KT", "BC", "BB", "GP"}

// Employees lists the staff allowed to submit a report.
var Employees = []string{
	"Kylie",
	"Isabel",
	"Lizzie",
	"Bridey",
	"Zara",
	"Lia",
	"Anais",
	"Nicholas",
	"Lance",
	"Dianne",
	"Katrina",
	"Fletcher",
	"Monique",
	"Kris",
	"Olive",
	"Hannah",
	"Soraya",
	"Emmanuelle",
	"Rika",
	"Yuriko",
	"Tara",
	"Jake",
	"Felicia",
	"Nate",
}

// Catalog is the read-only option set rendered by the form.
type Catalog struct {
	Stores        []string `json:"stores"`
	Employees     []string `json:"employees"`
	StandardItems []string `json:"standard_items"`
	MinQuantity   int      `json:"min_quantity"`
	MaxQuantity   int      `json:"max_quantity"`
}

// DefaultCatalog returns a copy of the built-in option lists.
func DefaultCatalog() Catalog {
	return Catalog{
		Stores:        append([]string(nil), Stores...),
		Employees:     append([]string(nil), Employees...),
		StandardItems: append([]string(nil), StandardItems...),
		MinQuantity:   MinQuantity,
		MaxQuantity:   MaxQuantity,
	}
}

// NormalizeItemName trims and uppercases a user supplied item name.
func NormalizeItemName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// IsStandardItem reports whether name (already normalized) is a predefined item.
func IsStandardItem(name string) bool {
	return slices.Contains(StandardItems, name)
}

// IsKnownStore reports whether code is one of the configured stores.
func IsKnownStore(code string) bool {
	return slices.Contains(Stores, code)
}

// IsKnownEmployee reports whether name is one of the configured employees.
func IsKnownEmployee(name string) bool {
	return slices.Contains(Employees, name)
}
