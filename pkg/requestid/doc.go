// Package requestid assigns every HTTP request an identifier that follows it
// through logs: Middleware accepts a well-formed X-Request-ID from the client
// or generates a UUID, and LoggerExtractor adds it to every record logged
// with the request context.
package requestid
