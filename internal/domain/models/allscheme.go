// internal/domain/models/allscheme.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// AllScheme is a schemaless document from the bulk-ingested all_schemes
// collection. The scraped corpus has no fixed shape, so it is kept as a map.
type AllScheme = bson.M

// DefaultEligibilityCriteria is used when a scheme carries no criteria text.
const DefaultEligibilityCriteria = "No specific eligibility criteria provided"

// AllSchemeName returns the display name of a bulk scheme document.
func AllSchemeName(doc AllScheme) string {
	for _, key := range []string{"schemeName", "name"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// AllSchemeCriteria returns the free-text eligibility criteria of a bulk
// scheme document, falling back to DefaultEligibilityCriteria.
func AllSchemeCriteria(doc AllScheme) string {
	for _, key := range []string{"eligibilityDescription_md", "eligibility"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return DefaultEligibilityCriteria
}
