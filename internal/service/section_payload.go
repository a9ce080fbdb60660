package service

import (
	"net/url"
	"sort"

	"github.com/microcosm-cc/bluemonday"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

// FieldKind classifies one section payload field.
type FieldKind int

const (
	// FieldKindScalar is a plain value (text, number, boolean).
	FieldKindScalar FieldKind = iota
	// FieldKindDocument is a reference to an uploaded document.
	FieldKindDocument
)

// SectionField is one classified field of a section payload. Classification
// happens once, up front, so the raters operate on an explicit tagged
// representation instead of re-sniffing value types mid-pipeline.
type SectionField struct {
	Name        string
	Kind        FieldKind
	DocumentURL string
	Scalar      interface{}
}

// ParseSectionPayload classifies every field of a section payload. Fields are
// returned in name order so concurrent fan-out writes into stable slots.
func ParseSectionPayload(payload map[string]interface{}) []SectionField {
	if payload == nil {
		return nil
	}

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]SectionField, 0, len(names))
	for _, name := range names {
		value := payload[name]
		if text, ok := value.(string); ok && isDocumentURL(text) {
			fields = append(fields, SectionField{Name: name, Kind: FieldKindDocument, DocumentURL: text})
			continue
		}
		fields = append(fields, SectionField{Name: name, Kind: FieldKindScalar, Scalar: value})
	}

	return fields
}

// DocumentFields filters the payload down to document references.
func DocumentFields(fields []SectionField) []SectionField {
	documents := make([]SectionField, 0, len(fields))
	for _, field := range fields {
		if field.Kind == FieldKindDocument {
			documents = append(documents, field)
		}
	}

	return documents
}

func isDocumentURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// reasoningPolicy strips any markup the model may have emitted before the
// text is persisted or returned to callers.
var reasoningPolicy = bluemonday.StrictPolicy()

func sanitizeReasoning(reasoning string) string {
	return reasoningPolicy.Sanitize(reasoning)
}

func emptySectionRating(reasoning string) models.SectionRating {
	return models.SectionRating{
		OverallScore:     0,
		Details:          []models.RatingDetail{},
		OverallReasoning: reasoning,
	}
}
