// Package validation decides whether an inbound request is well formed.
package validation

import (
	"net/http"
	"strings"

	"fhirgate/internal/core/catalog"
)

// Snapshot is the part of a request the validator looks at.
type Snapshot struct {
	PathSuffix  string
	HeaderNames []string
}

// Outcome is the validation result. The zero value means the request is valid.
type Outcome struct {
	ErrorName  string `json:"name"`
	StatusCode int    `json:"statusCode"`
}

// Valid is the outcome of a well formed request.
var Valid = Outcome{}

func (o Outcome) IsValid() bool {
	return o.ErrorName == ""
}

// Rules configures the validator.
type Rules struct {
	AllowedPrefixes []string
	RequiredHeaders []string
}

// DefaultRules returns the prefixes and headers every deployment starts with.
func DefaultRules() Rules {
	return Rules{
		AllowedPrefixes: []string{"/event", "/_ping", "/_status"},
		RequiredHeaders: []string{"x-request-id", "x-correlation-id"},
	}
}

// Validator checks paths against an allow-list and headers against a
// required set. It is immutable and safe for concurrent use.
type Validator struct {
	prefixes []string
	required []string
}

// New creates a validator. Header names are normalized once here.
func New(rules Rules) *Validator {
	v := &Validator{
		prefixes: append([]string(nil), rules.AllowedPrefixes...),
		required: make([]string, 0, len(rules.RequiredHeaders)),
	}
	for _, h := range rules.RequiredHeaders {
		if n := normalize(h); n != "" {
			v.required = append(v.required, n)
		}
	}
	return v
}

// Validate returns Valid or the first failed check.
func (v *Validator) Validate(s Snapshot) Outcome {
	if !v.allowedPath(s.PathSuffix) {
		return Outcome{ErrorName: catalog.KeyPageNotFound, StatusCode: http.StatusNotFound}
	}
	if !v.hasRequiredHeaders(s.HeaderNames) {
		return Outcome{ErrorName: catalog.KeyInvalidHeaders, StatusCode: http.StatusBadRequest}
	}
	return Valid
}

// Keys lists the catalog keys Validate can return.
func (v *Validator) Keys() []string {
	return []string{catalog.KeyPageNotFound, catalog.KeyInvalidHeaders}
}

func (v *Validator) allowedPath(path string) bool {
	for _, prefix := range v.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (v *Validator) hasRequiredHeaders(names []string) bool {
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[normalize(n)] = struct{}{}
	}
	for _, h := range v.required {
		if _, ok := present[h]; !ok {
			return false
		}
	}
	return true
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
