// Package jwt issues and verifies the HS256 tokens of lmskit on top of
// github.com/golang-jwt/jwt/v5.
//
// Claims embed the registered claims and add the tenant the identity belongs
// to. Middleware verifies the token of each request and stores the claims in
// the request context; it makes no routing decisions. TenantClaim exposes the
// tenant claim in the shape tenant.NewClaimResolver expects:
//
//	svc, err := jwt.NewFromConfig(cfg)
//	if err != nil {
//	    return err
//	}
//
//	r.Use(jwt.Middleware(svc, jwt.WithOptional()))
//	r.Use(tenantdb.Middleware(tenant.NewDefaultResolver(suffix, "", jwt.TenantClaim), registry, registrar))
//
// Parse errors wrap ErrExpiredToken, ErrInvalidSignature,
// ErrUnexpectedSigningMethod or ErrInvalidToken and can be matched with
// errors.Is.
package jwt
