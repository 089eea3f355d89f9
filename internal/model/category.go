package model

// Category represents one entry in the fixed classification taxonomy.
// The set is immutable reference data; it is seeded into storage by the
// migrations but the authoritative list lives here.
type Category struct {
	ID   string
	Name string
}

// Category identifiers.
const (
	CategoryFood          = "food_dining"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryEntertainment = "entertainment"
	CategoryHealthcare    = "healthcare"
	CategoryUtilities     = "utilities"
	CategoryEducation     = "education"
	CategoryFinancial     = "financial_services"
	CategoryIncome        = "income"
	// CategoryOther is the sentinel assigned when no signal matched.
	// A transaction category is never empty.
	CategoryOther = "other"
)

// Categories returns the full taxonomy in declaration order. Declaration
// order doubles as the tie-break order for contextual keyword scoring.
func Categories() []Category {
	return []Category{
		{ID: CategoryFood, Name: "Food & Dining"},
		{ID: CategoryTransport, Name: "Transport"},
		{ID: CategoryShopping, Name: "Shopping"},
		{ID: CategoryEntertainment, Name: "Entertainment"},
		{ID: CategoryHealthcare, Name: "Healthcare"},
		{ID: CategoryUtilities, Name: "Utilities"},
		{ID: CategoryEducation, Name: "Education"},
		{ID: CategoryFinancial, Name: "Financial Services"},
		{ID: CategoryIncome, Name: "Income"},
		{ID: CategoryOther, Name: "Other"},
	}
}

// CategoryName resolves a category ID to its display name. Unknown IDs
// resolve to the sentinel "Other" name.
func CategoryName(id string) string {
	for _, c := range Categories() {
		if c.ID == id {
			return c.Name
		}
	}
	return "Other"
}

// ValidCategory reports whether id is part of the taxonomy.
func ValidCategory(id string) bool {
	for _, c := range Categories() {
		if c.ID == id {
			return true
		}
	}
	return false
}
