package model

// Method tags how a classification was produced.
type Method string

// Classification method constants, ordered from most to least authoritative.
const (
	MethodExternal Method = "external"
	MethodEnsemble Method = "ensemble"
	MethodPattern  Method = "pattern"
	MethodFallback Method = "fallback"
)

// ClassificationResult is the transient output of any classifier tier.
// It is never persisted directly; the record assembler consumes it.
type ClassificationResult struct {
	CategoryID  string
	Subcategory string
	Direction   Direction
	Method      Method
	Merchant    string
	Description string
	Confidence  float64
}
