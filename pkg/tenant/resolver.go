package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxIDLength bounds tenant ids and the database names derived from them.
	MaxIDLength = 63

	// DefaultHeader is the header read by NewHeaderResolver when none is given.
	DefaultHeader = "X-Tenant-ID"
)

// labelPattern allows DNS-safe labels: alphanumeric start, then alphanumerics and hyphens.
var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// forbiddenChars cannot appear in a MongoDB database name.
const forbiddenChars = `/\. "$*<>:|?`

// Resolver extracts tenant identifier from HTTP requests.
type Resolver interface {
	// Resolve returns an empty string when its signal is absent, and an
	// error when the signal is present but malformed. It performs no I/O.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

// ClaimFunc returns the tenant claim of an already verified identity from ctx.
type ClaimFunc func(ctx context.Context) (string, bool)

// ValidID reports whether id is an acceptable tenant identifier. Ids are
// opaque: anything printable up to MaxIDLength that is also usable inside a
// database name.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength || strings.ContainsAny(id, forbiddenChars) {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ValidLabel reports whether label is a DNS-safe tenant subdomain.
func ValidLabel(label string) bool {
	return label != "" && len(label) <= MaxIDLength && labelPattern.MatchString(label)
}

// SubdomainResolver extracts tenant identifier from the first label of the host.
type SubdomainResolver struct {
	// Suffix is the base domain (e.g. ".lms.example.com"). When set only hosts
	// under it carry a tenant; when empty the host needs at least three labels.
	Suffix string
}

// NewSubdomainResolver creates a new subdomain resolver.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

// Resolve extracts the tenant from the subdomain. A leading "www" label is
// skipped; IP literals have no subdomain.
func (s *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := hostname(req.Host)
	if host == "" || net.ParseIP(host) != nil {
		return "", nil
	}

	if s.Suffix != "" {
		if !strings.HasSuffix(host, s.Suffix) || len(host) == len(s.Suffix) {
			return "", nil
		}
		host = strings.TrimSuffix(strings.TrimSuffix(host, s.Suffix), ".")
	} else if strings.Count(host, ".") < 2 {
		return "", nil
	}

	parts := strings.Split(host, ".")
	label := parts[0]
	if label == "www" {
		parts = parts[1:]
		if len(parts) == 0 || (s.Suffix == "" && len(parts) < 3) {
			return "", nil
		}
		label = parts[0]
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil
	}
	if !ValidLabel(label) {
		return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, label)
	}
	return label, nil
}

// hostname strips the port and IPv6 brackets from a Host header value.
func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
}

// HeaderResolver extracts tenant identifier from an HTTP header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver. It defaults to DefaultHeader.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve extracts the tenant from the configured header.
func (h *HeaderResolver) Resolve(req *http.Request) (string, error) {
	value := strings.TrimSpace(req.Header.Get(h.HeaderName))
	if value == "" {
		return "", nil
	}
	if !ValidID(value) {
		return "", fmt.Errorf("%w: header %s value %q", ErrInvalidIdentifier, h.HeaderName, value)
	}
	return value, nil
}

// ClaimResolver reads the tenant claim that an upstream authentication layer
// placed in the request context. A nil Claim never resolves.
type ClaimResolver struct {
	Claim ClaimFunc
}

// NewClaimResolver creates a claim resolver.
func NewClaimResolver(claim ClaimFunc) *ClaimResolver {
	return &ClaimResolver{Claim: claim}
}

// Resolve returns the verified tenant claim.
func (c *ClaimResolver) Resolve(req *http.Request) (string, error) {
	if c.Claim == nil {
		return "", nil
	}
	value, ok := c.Claim(req.Context())
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", nil
	}
	if !ValidID(value) {
		return "", fmt.Errorf("%w: claim value %q", ErrInvalidIdentifier, value)
	}
	return value, nil
}

// CompositeResolver tries multiple resolvers in order until one succeeds.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve returns the first non-empty result. Errors are only reported when
// no resolver produced an identifier.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver errors: %w", errors.Join(errs...))
	}
	return "", nil
}

// NewDefaultResolver resolves in the platform's priority order:
// subdomain label, then tenant header, then verified token claim.
func NewDefaultResolver(suffix, header string, claim ClaimFunc) *CompositeResolver {
	return NewCompositeResolver(
		NewSubdomainResolver(suffix),
		NewHeaderResolver(header),
		NewClaimResolver(claim),
	)
}

// Resolve runs resolver and turns the unresolved result into ErrMissingTenant,
// so a returned id is never empty.
func Resolve(r *http.Request, resolver Resolver) (string, error) {
	id, err := resolver.Resolve(r)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrMissingTenant
	}
	return id, nil
}
