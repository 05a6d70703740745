package security

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"fhirgate/internal/core/catalog"
)

// VerifierConfig configures bearer token verification.
type VerifierConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Result is what the verifier reports back to the flow, shaped like the
// host OAuth variables.
type Result struct {
	FaultName string
	Failed    bool
	Claims    jwt.MapClaims
}

// Fault converts the result for catalog fault translation.
func (r Result) Fault() catalog.Fault {
	return catalog.Fault{Name: r.FaultName, Failed: r.Failed}
}

// Verifier checks HMAC signed bearer tokens
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier. An empty secret fails every token.
func NewVerifier(cfg VerifierConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{
		secret: cfg.Secret,
		parser: jwt.NewParser(opts...),
	}
}

// Verify checks an Authorization header value.
func (v *Verifier) Verify(authorization string) Result {
	token, ok := bearerToken(authorization)
	if !ok {
		return Result{FaultName: catalog.FaultMissingAccessToken, Failed: true}
	}

	parsed, err := v.parser.ParseWithClaims(token, jwt.MapClaims{}, v.keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return Result{FaultName: catalog.FaultExpiredAccessToken, Failed: true}
		}
		return Result{FaultName: catalog.FaultInvalidAccessToken, Failed: true}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Result{FaultName: catalog.FaultInvalidAccessToken, Failed: true}
	}
	return Result{Claims: claims}
}

func (v *Verifier) keyfunc(*jwt.Token) (interface{}, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("no verification secret configured")
	}
	return v.secret, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
