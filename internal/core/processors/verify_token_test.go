package processors

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fhirgate/internal/core"
	"fhirgate/internal/core/catalog"
	"fhirgate/internal/core/security"
)

func TestTokenVerifierSetsFaultVariables(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	p := NewTokenVerifier(security.NewVerifier(security.VerifierConfig{Secret: secret}))

	testCases := []struct {
		name       string
		header     string
		wantFault  string
		wantFailed bool
	}{
		{"valid token", "Bearer " + valid, "", false},
		{"missing token", "", catalog.FaultMissingAccessToken, true},
		{"invalid token", "Bearer abc.def.ghi", catalog.FaultInvalidAccessToken, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := newTestContext(zap.NewAtomicLevelAt(zap.InfoLevel))
			if tc.header != "" {
				ctx.Vars.Set(core.VarAuthorization, tc.header)
			}

			if err := p.OnRequest(ctx); err != nil {
				t.Fatalf("OnRequest failed: %v", err)
			}

			fault, _ := core.GetString(ctx.Vars, core.VarTokenFaultName)
			if fault != tc.wantFault {
				t.Errorf("Expected fault '%s', got '%s'", tc.wantFault, fault)
			}
			if failed := core.GetBool(ctx.Vars, core.VarTokenFailed); failed != tc.wantFailed {
				t.Errorf("Expected failed=%v, got %v", tc.wantFailed, failed)
			}
		})
	}
}

func TestTokenVerifierBeforeValidation(t *testing.T) {
	v := NewTokenVerifier(security.NewVerifier(security.VerifierConfig{}))
	if v.Priority() >= (&RequestValidator{}).Priority() {
		t.Error("Expected token verification to run before validation")
	}
}
