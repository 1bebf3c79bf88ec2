// Package environment propagates the application environment (development,
// staging or production) through context.Context, HTTP requests and
// structured logs.
//
// Parse normalizes configuration values such as "prod" or "stage".
// Middleware stamps the environment onto each request context, and
// LoggerExtractor exposes it to logger.WithContextExtractors:
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	handler = environment.Middleware(env)(handler)
//
//	if environment.IsProduction(r.Context()) {
//	    // production-only behaviour
//	}
package environment
