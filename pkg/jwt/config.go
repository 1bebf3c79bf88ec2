package jwt

import "time"

// Config holds token verification settings.
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"lmskit"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"1h"`
	Leeway     time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}
