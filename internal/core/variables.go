package core

import (
	"strings"
	"sync"
)

// Flow variable names shared between the host and the processors.
const (
	VarPathSuffix      = "proxy.pathsuffix"
	VarHeaderNames     = "request.headers.names"
	VarAuthorization   = "request.header.authorization"
	VarResponseContent = "response.content"
	VarResponseStatus  = "response.status.code"

	VarTokenFaultName = "oauthV2.OauthV2.VerifyAccessToken.fault.name"
	VarTokenFailed    = "oauthV2.OauthV2.VerifyAccessToken.failed"

	VarValidationError = "validation.error"
	VarErrorContent    = "errorContent"
	VarErrorStatusCode = "errorStatusCode"
	VarErrorKey        = "errorKey"
	VarDynamicResponse = "Javascript_dynamic_response"
)

// Variables is the capability a host exposes to the flow.
type Variables interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// MemoryVariables is a map-backed Variables implementation (thread-safe)
type MemoryVariables struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewMemoryVariables creates an empty variable store
func NewMemoryVariables() *MemoryVariables {
	return &MemoryVariables{vars: make(map[string]any)}
}

// Get returns the value stored under name
func (m *MemoryVariables) Get(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	return v, ok
}

// Set stores value under name. A nil value removes the variable.
func (m *MemoryVariables) Set(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.vars, name)
		return
	}
	m.vars[name] = value
}

// Snapshot returns a copy of all variables
func (m *MemoryVariables) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}

// GetString reads a string variable; []byte values are converted.
func GetString(vars Variables, name string) (string, bool) {
	v, ok := vars.Get(name)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// GetBool reads a boolean flag. The strings "true"/"false" are accepted as
// some hosts only deal in strings.
func GetBool(vars Variables, name string) bool {
	v, ok := vars.Get(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// GetInt reads an integer variable
func GetInt(vars Variables, name string) (int, bool) {
	v, ok := vars.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// GetStrings reads a list variable. A comma separated string is split.
func GetStrings(vars Variables, name string) []string {
	v, ok := vars.Get(name)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return l
	case string:
		if l == "" {
			return nil
		}
		return strings.Split(l, ",")
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
