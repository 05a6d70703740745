package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"fhirgate/internal/core/fhir"
)

func TestMapUnprocessableEntity(t *testing.T) {
	doc, err := Map([]byte(`{"id":"x","issue":[{"code":"unprocessable_entity"}]}`))
	require.NoError(t, err)

	assert.Equal(t, "x", doc.ID)
	assert.Equal(t, fhir.ResourceType, doc.ResourceType)
	require.Len(t, doc.Issue, 1)
	issue := doc.Issue[0]
	assert.Equal(t, "unprocessable_entity", issue.Code)
	assert.Equal(t, fhir.SeverityError, issue.Severity)
	assert.Equal(t, "The proposed resource violated applicable FHIR profiles or server business rules.", issue.Diagnostics)
	assert.Equal(t, []fhir.Coding{{System: fhir.HTTPErrorCodeSystem, Code: "unprocessable_entity"}}, issue.Details.Coding)
}

func TestMapInternalServerError(t *testing.T) {
	doc, err := Map([]byte(`{"id":"y","issue":[{"code":"internal_server_error","severity":"fatal"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Unexpected internal server error.", doc.FirstIssue().Diagnostics)
	assert.Equal(t, fhir.SeverityError, doc.FirstIssue().Severity)
}

func TestMapUnknownCodeHasEmptyDiagnostics(t *testing.T) {
	doc, err := Map([]byte(`{"id":"z","issue":[{"code":"duplicate"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", doc.FirstIssue().Code)
	assert.Equal(t, "", doc.FirstIssue().Diagnostics)
}

func TestMapOnlyFirstIssueCounts(t *testing.T) {
	doc, err := Map([]byte(`{"id":"x","issue":[{"code":"duplicate"},{"code":"unprocessable_entity"}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Issue, 1)
	assert.Equal(t, "duplicate", doc.FirstIssue().Code)
}

func TestMapMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty issue":    `{"id":"x","issue":[]}`,
		"missing issue":  `{"id":"x"}`,
		"issue object":   `{"id":"x","issue":{"code":"a"}}`,
		"missing code":   `{"id":"x","issue":[{"severity":"error"}]}`,
		"not json":       `<html>bad gateway</html>`,
		"empty body":     ``,
		"truncated json": `{"id":"x","issue":[`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Map([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedUpstreamBody)

			_, err = Render([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedUpstreamBody)
		})
	}
}

func TestRenderCopiesIDVerbatim(t *testing.T) {
	out, err := Render([]byte(`{"id":"abc-123","issue":[{"code":"unprocessable_entity"}]}`))
	require.NoError(t, err)

	doc, err := fhir.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", doc.ID)
	assert.Equal(t, "unprocessable_entity", doc.FirstIssue().Code)
	assert.Regexp(t, `^\{"resourceType":"OperationOutcome","id":"abc-123","meta":`, string(out))
}

func TestRenderNumericID(t *testing.T) {
	out, err := Render([]byte(`{"id":42,"issue":[{"code":"internal_server_error"}]}`))
	require.NoError(t, err)
	assert.Equal(t, gjson.Number, gjson.GetBytes(out, "id").Type)
	assert.Equal(t, int64(42), gjson.GetBytes(out, "id").Int())
}

func TestRenderAbsentID(t *testing.T) {
	out, err := Render([]byte(`{"issue":[{"code":"internal_server_error"}]}`))
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(out, "id").Exists())
	assert.Equal(t, "Unexpected internal server error.", gjson.GetBytes(out, "issue.0.diagnostics").String())
}

func TestDiagnostics(t *testing.T) {
	assert.Equal(t, "Unexpected internal server error.", Diagnostics(CodeInternalServerError))
	assert.Empty(t, Diagnostics("anything-else"))
}
