// Package fhir holds the OperationOutcome wire shape returned to clients.
package fhir

import (
	"fmt"

	"github.com/bytedance/sonic"
)

const (
	ResourceType = "OperationOutcome"

	// ProfileUKCore is the meta.profile every outcome declares.
	ProfileUKCore = "https://simplifier.net/guide/UKCoreDevelopment2/ProfileUKCore-OperationOutcome"
	// HTTPErrorCodeSystem is the coding system for details.coding.
	HTTPErrorCodeSystem = "https://fhir.nhs.uk/Codesystem/http-error-codes"

	SeverityFatal       = "fatal"
	SeverityError       = "error"
	SeverityWarning     = "warning"
	SeverityInformation = "information"
)

// OperationOutcome is the error body. Field order is the serialized order.
type OperationOutcome struct {
	ResourceType string  `json:"resourceType"`
	ID           string  `json:"id"`
	Meta         Meta    `json:"meta"`
	Issue        []Issue `json:"issue"`
}

type Meta struct {
	Profile []string `json:"profile"`
}

type Issue struct {
	Severity    string  `json:"severity"`
	Code        string  `json:"code"`
	Details     Details `json:"details"`
	Diagnostics string  `json:"diagnostics"`
}

type Details struct {
	Coding []Coding `json:"coding"`
}

type Coding struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

// NewOutcome builds a single-issue OperationOutcome.
func NewOutcome(id, profile, severity, code, system, systemCode, diagnostics string) OperationOutcome {
	return OperationOutcome{
		ResourceType: ResourceType,
		ID:           id,
		Meta:         Meta{Profile: []string{profile}},
		Issue: []Issue{{
			Severity: severity,
			Code:     code,
			Details: Details{
				Coding: []Coding{{System: system, Code: systemCode}},
			},
			Diagnostics: diagnostics,
		}},
	}
}

// FirstIssue returns issue[0], or a zero Issue when there is none.
func (o OperationOutcome) FirstIssue() Issue {
	if len(o.Issue) == 0 {
		return Issue{}
	}
	return o.Issue[0]
}

// Marshal serializes the outcome.
func Marshal(o OperationOutcome) ([]byte, error) {
	b, err := sonic.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OperationOutcome: %w", err)
	}
	return b, nil
}

// Parse decodes an OperationOutcome body and checks its resourceType.
func Parse(body []byte) (OperationOutcome, error) {
	var o OperationOutcome
	if err := sonic.Unmarshal(body, &o); err != nil {
		return OperationOutcome{}, fmt.Errorf("failed to parse OperationOutcome: %w", err)
	}
	if o.ResourceType != ResourceType {
		return OperationOutcome{}, fmt.Errorf("unexpected resourceType %q", o.ResourceType)
	}
	return o, nil
}
