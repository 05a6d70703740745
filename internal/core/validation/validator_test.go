package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fhirgate/internal/core/catalog"
)

var (
	notFound   = Outcome{ErrorName: "404PageNotFound", StatusCode: 404}
	badHeaders = Outcome{ErrorName: "400InvalidHeaders", StatusCode: 400}
)

func TestValidateValidEvent(t *testing.T) {
	v := New(DefaultRules())

	got := v.Validate(Snapshot{
		PathSuffix:  "/event/123",
		HeaderNames: []string{"X-Request-Id", "x-correlation-ID"},
	})

	assert.Equal(t, Valid, got)
	assert.True(t, got.IsValid())
}

func TestValidatePathMiss(t *testing.T) {
	v := New(DefaultRules())
	allHeaders := []string{"x-request-id", "x-correlation-id"}

	for _, path := range []string{"/other", "", "/", "event", "/Event", "/api/event", "/_pin"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, notFound, v.Validate(Snapshot{PathSuffix: path, HeaderNames: allHeaders}))
			assert.Equal(t, notFound, v.Validate(Snapshot{PathSuffix: path}))
		})
	}
}

func TestValidateAllowedPrefixes(t *testing.T) {
	v := New(DefaultRules())
	headers := []string{"x-request-id", "x-correlation-id"}

	for _, path := range []string{"/event", "/events", "/event/1/2", "/_ping", "/_status", "/_status/deep"} {
		assert.Equal(t, Valid, v.Validate(Snapshot{PathSuffix: path, HeaderNames: headers}), path)
	}
}

func TestValidateHeaders(t *testing.T) {
	v := New(DefaultRules())

	cases := []struct {
		name    string
		headers []string
		want    Outcome
	}{
		{"none", nil, badHeaders},
		{"only request id", []string{"X-Request-ID"}, badHeaders},
		{"only correlation id", []string{"X-Correlation-ID"}, badHeaders},
		{"similar names", []string{"x-request", "x-correlation"}, badHeaders},
		{"exact", []string{"x-request-id", "x-correlation-id"}, Valid},
		{"mixed case", []string{"X-REQUEST-ID", "X-Correlation-Id"}, Valid},
		{"whitespace", []string{"  x-request-id ", "\tx-correlation-id\n"}, Valid},
		{"extra headers", []string{"Accept", "x-request-id", "Host", "x-correlation-id"}, Valid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.Validate(Snapshot{PathSuffix: "/_ping", HeaderNames: tc.headers}))
		})
	}
}

func TestValidateCustomRules(t *testing.T) {
	v := New(Rules{
		AllowedPrefixes: []string{"/FHIR/R4"},
		RequiredHeaders: []string{" X-Api-Key "},
	})

	assert.Equal(t, notFound, v.Validate(Snapshot{PathSuffix: "/event", HeaderNames: []string{"x-api-key"}}))
	assert.Equal(t, badHeaders, v.Validate(Snapshot{PathSuffix: "/FHIR/R4/Patient"}))
	assert.Equal(t, Valid, v.Validate(Snapshot{PathSuffix: "/FHIR/R4/Patient", HeaderNames: []string{"X-API-KEY"}}))
}

func TestValidatorKeysExistInCatalog(t *testing.T) {
	assert.NoError(t, catalog.Default().Require(New(DefaultRules()).Keys()...))
}
