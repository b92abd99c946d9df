package embedding

import (
	"encoding/json"
	"strings"

	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fields are the scheme fields that feed the embedding text. Eligibility and
// Benefits are untyped because bulk-ingested documents store them as either
// text or structured objects.
type Fields struct {
	Name        string
	Acronym     string
	Overview    string
	Eligibility any
	Benefits    any
	Documents   string
	Apply       string
	Tags        []string
	FAQ         []models.FAQ
}

// SchemeFields extracts the embedding fields of a curated scheme.
func SchemeFields(s models.Scheme) Fields {
	return Fields{
		Name:        s.Name,
		Acronym:     s.Acronym,
		Overview:    s.Overview,
		Eligibility: s.Eligibility,
		Benefits:    s.Benefits,
		Documents:   s.Documents,
		Apply:       s.Apply,
		Tags:        s.Tags,
		FAQ:         s.FAQ,
	}
}

// DocFields extracts the embedding fields of a raw scheme document.
func DocFields(doc primitive.M) Fields {
	str := func(k string) string {
		s, _ := doc[k].(string)
		return s
	}
	f := Fields{
		Name:        str("name"),
		Acronym:     str("acronym"),
		Overview:    str("overview"),
		Eligibility: doc["eligibility"],
		Benefits:    doc["benefits"],
		Documents:   str("documents"),
		Apply:       str("apply"),
	}
	if tags, ok := doc["tags"].(primitive.A); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				f.Tags = append(f.Tags, s)
			}
		}
	}
	if faq, ok := doc["faq"].(primitive.A); ok {
		for _, item := range faq {
			if m, ok := item.(primitive.M); ok {
				q, _ := m["question"].(string)
				a, _ := m["answer"].(string)
				f.FAQ = append(f.FAQ, models.FAQ{Question: q, Answer: a})
			}
		}
	}
	return f
}

// BuildText concatenates the non-empty fields with ". ".
//
// Non-string eligibility is JSON-encoded; non-string benefits contribute
// their "description" key. FAQ entries render as "<question> <answer>"
// joined with ". ", and tags are joined with ", ".
func BuildText(f Fields) string {
	faq := make([]string, 0, len(f.FAQ))
	for _, q := range f.FAQ {
		faq = append(faq, q.Question+" "+q.Answer)
	}

	parts := []string{
		f.Name,
		f.Acronym,
		f.Overview,
		eligibilityText(f.Eligibility),
		benefitsText(f.Benefits),
		f.Documents,
		f.Apply,
		strings.Join(f.Tags, ", "),
		strings.Join(faq, ". "),
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ". ")
}

func eligibilityText(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func benefitsText(v any) string {
	switch b := v.(type) {
	case string:
		return b
	case map[string]any:
		s, _ := b["description"].(string)
		return s
	case primitive.M:
		s, _ := b["description"].(string)
		return s
	}
	return ""
}
