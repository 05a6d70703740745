package catalog

import (
	"fhirgate/internal/core/fhir"
)

// Response is a rendered error ready for the host.
type Response struct {
	Content    string
	StatusCode int
}

// Format maps an entry onto its OperationOutcome document.
func Format(e Entry) fhir.OperationOutcome {
	return fhir.NewOutcome(e.ID, e.Profile, e.Severity, e.Code, e.System, e.SystemCode, e.Diagnostics)
}

// Render serializes the entry with its own status code.
func Render(e Entry) (Response, error) {
	return RenderWithStatus(e, e.Status)
}

// RenderWithStatus serializes the entry with an explicit status code.
func RenderWithStatus(e Entry, status int) (Response, error) {
	body, err := fhir.Marshal(Format(e))
	if err != nil {
		return Response{}, err
	}
	return Response{Content: string(body), StatusCode: status}, nil
}
