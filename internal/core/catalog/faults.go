package catalog

// Fault names the host sets after access token verification.
const (
	FaultInvalidAccessToken = "keymanagement.service.invalid_access_token"
	FaultExpiredAccessToken = "oauth.v2.InvalidAccessToken"
	FaultMissingAccessToken = "steps.oauth.v2.FailedToResolveAccessToken"
)

// Fault is the host's access token verification outcome.
type Fault struct {
	Name   string
	Failed bool
}

// FaultMapper translates host faults into catalog keys
type FaultMapper struct {
	names     map[string]string
	failedKey string
}

// NewFaultMapper returns the default translation table plus extra name -> key
// pairs. Extra pairs override defaults with the same name.
func NewFaultMapper(extra map[string]string) *FaultMapper {
	names := map[string]string{
		FaultInvalidAccessToken: KeyUnauthorizedSecurity,
		FaultExpiredAccessToken: KeyUnauthorizedExpired,
	}
	for name, key := range extra {
		names[name] = key
	}
	return &FaultMapper{names: names, failedKey: KeyUnauthorizedSecurity}
}

// Translate selects a catalog key for f. Unmapped names without the failed
// flag select nothing and the host's own error handling applies.
func (m *FaultMapper) Translate(f Fault) (string, bool) {
	if key, ok := m.names[f.Name]; ok && f.Name != "" {
		return key, true
	}
	if f.Failed {
		return m.failedKey, true
	}
	return "", false
}

// Keys lists every catalog key the mapper can select.
func (m *FaultMapper) Keys() []string {
	keys := []string{m.failedKey}
	for _, k := range m.names {
		keys = append(keys, k)
	}
	return keys
}
