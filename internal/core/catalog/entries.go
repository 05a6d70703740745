package catalog

import (
	"net/http"

	"fhirgate/internal/core/fhir"
)

// Catalog keys referenced by the flow.
const (
	KeyUnauthorizedSecurity = "401UnauthorizedSecurity"
	KeyUnauthorizedLogin    = "401UnauthorizedLogin"
	KeyUnauthorizedExpired  = "401UnauthorizedExpired"
	KeyProxyNotEnabled      = "403ProxyNotEnabled"
	KeyPageNotFound         = "404PageNotFound"
	KeyInvalidHeaders       = "400InvalidHeaders"
	KeyPayloadTooLarge      = "413PayloadTooLarge"
)

// defaultEntries is the built-in error table.
var defaultEntries = []Entry{
	{
		Key:         KeyUnauthorizedSecurity,
		Status:      http.StatusUnauthorized,
		ID:          "d7aaf12e-7b94-4ef6-b047-d2d92981b1cd",
		Code:        "Security",
		SystemCode:  "SEND_UNAUTHORIZED",
		Diagnostics: "The user or system was not able to be authenticated, either the access token was invalid, or not provided.",
	},
	{
		Key:         KeyUnauthorizedLogin,
		Status:      http.StatusUnauthorized,
		ID:          "e1112dbd-7aaf-412e-9b94-ef6e047d2d92",
		Code:        "Login",
		SystemCode:  "SEND_UNAUTHORIZED",
		Diagnostics: "No Access token was provided.",
	},
	{
		Key:         KeyUnauthorizedExpired,
		Status:      http.StatusUnauthorized,
		ID:          "e1112dbd-7aaf-412e-9b94-ef6e047d2d92",
		Code:        "Expired or invalid",
		SystemCode:  "SEND_UNAUTHORIZED",
		Diagnostics: "The access token has expired or is invalid.",
	},
	{
		Key:         KeyProxyNotEnabled,
		Status:      http.StatusForbidden,
		ID:          "3ce474db-cbc8-4682-a5ab-ca2a4eda1dae",
		Code:        "forbidden",
		SystemCode:  "SEND_FORBIDDEN",
		Diagnostics: "The access token was provided, but BaRS is not enabled.",
	},
	{
		Key:         KeyPageNotFound,
		Status:      http.StatusNotFound,
		ID:          "a5abca2a-4eda-41da-b2cc-95d48c6b791d",
		Code:        "not-found",
		SystemCode:  "NOT_FOUND",
		Diagnostics: "The requested resource was not found.",
	},
	{
		Key:         KeyInvalidHeaders,
		Status:      http.StatusBadRequest,
		ID:          "0b3e5d4a-6c1f-4f7e-9a2d-8e4b7c1d2f60",
		Code:        "invalid",
		SystemCode:  "BAD_REQUEST",
		Diagnostics: "The request is missing one or more required headers.",
	},
	{
		Key:         KeyPayloadTooLarge,
		Status:      http.StatusRequestEntityTooLarge,
		ID:          "6c2f9a41-3e8b-4d7a-b5c0-1f9e2d7a8b34",
		Code:        "too-long",
		SystemCode:  "PAYLOAD_TOO_LARGE",
		Diagnostics: "The request body exceeds the maximum size accepted by the gateway.",
	},
}

// DefaultEntries returns a copy of the built-in table with profile, system
// and severity filled in.
func DefaultEntries() []Entry {
	out := make([]Entry, len(defaultEntries))
	for i, e := range defaultEntries {
		out[i] = e.withDefaults()
	}
	return out
}

func (e Entry) withDefaults() Entry {
	if e.Profile == "" {
		e.Profile = fhir.ProfileUKCore
	}
	if e.System == "" {
		e.System = fhir.HTTPErrorCodeSystem
	}
	if e.Severity == "" {
		e.Severity = fhir.SeverityError
	}
	return e
}
