// internal/app/system/limits/limits.go
package limits

// Request size limits.
const (
	// MaxJSONBody caps every JSON request body read through respond.Decode.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxSearchQuery is the longest semantic search query, in runes, that
	// is sent to the embedding backend.
	MaxSearchQuery = 500
)
