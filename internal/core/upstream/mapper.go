// Package upstream turns an upstream FHIR error body into the gateway's own
// OperationOutcome.
package upstream

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"fhirgate/internal/core/fhir"
)

var ErrMalformedUpstreamBody = errors.New("malformed upstream body")

// Issue codes with a known diagnostics message.
const (
	CodeUnprocessableEntity = "unprocessable_entity"
	CodeInternalServerError = "internal_server_error"
)

var diagnostics = map[string]string{
	CodeUnprocessableEntity: "The proposed resource violated applicable FHIR profiles or server business rules.",
	CodeInternalServerError: "Unexpected internal server error.",
}

// Diagnostics returns the message for an issue code. Unknown codes get an
// empty message.
func Diagnostics(code string) string {
	return diagnostics[code]
}

// Map reads id and issue[0].code from body and builds the outcome.
func Map(body []byte) (fhir.OperationOutcome, error) {
	id, code, err := extract(body)
	if err != nil {
		return fhir.OperationOutcome{}, err
	}
	idValue := id.String()
	if id.Type != gjson.String {
		idValue = id.Raw
	}
	return outcome(idValue, code), nil
}

// Render is Map followed by serialization. The upstream id is copied as raw
// JSON so non-string ids keep their type, and an absent id is left out.
func Render(body []byte) ([]byte, error) {
	id, code, err := extract(body)
	if err != nil {
		return nil, err
	}

	out, err := fhir.Marshal(outcome("", code))
	if err != nil {
		return nil, err
	}
	if !id.Exists() {
		return sjson.DeleteBytes(out, "id")
	}
	out, err = sjson.SetRawBytes(out, "id", []byte(id.Raw))
	if err != nil {
		return nil, fmt.Errorf("failed to copy upstream id: %w", err)
	}
	return out, nil
}

func extract(body []byte) (gjson.Result, string, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, "", fmt.Errorf("%w: not valid JSON", ErrMalformedUpstreamBody)
	}
	issue := gjson.GetBytes(body, "issue")
	if !issue.IsArray() {
		return gjson.Result{}, "", fmt.Errorf("%w: issue is missing or not an array", ErrMalformedUpstreamBody)
	}
	code := issue.Get("0.code")
	if !code.Exists() {
		if len(issue.Array()) == 0 {
			return gjson.Result{}, "", fmt.Errorf("%w: issue is empty", ErrMalformedUpstreamBody)
		}
		return gjson.Result{}, "", fmt.Errorf("%w: issue[0].code is missing", ErrMalformedUpstreamBody)
	}
	return gjson.GetBytes(body, "id"), code.String(), nil
}

func outcome(id, code string) fhir.OperationOutcome {
	return fhir.NewOutcome(id, fhir.ProfileUKCore, fhir.SeverityError, code, fhir.HTTPErrorCodeSystem, code, Diagnostics(code))
}
