package tenantdb

import (
	"maps"
	"time"

	"github.com/dmitrymomot/lmskit/pkg/config"
	"github.com/dmitrymomot/lmskit/pkg/mongo"
)

// Config holds tenant routing settings.
type Config struct {
	Databases        map[string]string `env:"TENANT_DATABASES" envDefault:"ngo:NgoLms"`    // Databases is the static tenant:database table.
	DatabasesFile    string            `env:"TENANT_DATABASES_FILE"`                      // DatabasesFile is an optional YAML table merged over Databases.
	HandshakeTimeout time.Duration     `env:"TENANT_HANDSHAKE_TIMEOUT" envDefault:"30s"`  // HandshakeTimeout is the hard deadline raced against each handshake.
	FallbackSuffix   string            `env:"TENANT_DATABASE_SUFFIX" envDefault:"Db"`     // FallbackSuffix derives database names of unmapped tenants.
	Strict           bool              `env:"TENANT_STRICT" envDefault:"false"`           // Strict rejects unmapped tenants instead of deriving a name.
	SubdomainSuffix  string            `env:"TENANT_SUBDOMAIN_SUFFIX"`                    // SubdomainSuffix is the base domain stripped before reading the tenant label.
	Header           string            `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`     // Header carries an explicit tenant id.
	MatchClaim       bool              `env:"TENANT_MATCH_CLAIM" envDefault:"true"`       // MatchClaim rejects tenants that differ from the token claim.
}

// DatabaseTable returns the env table with the YAML file merged over it.
func (c Config) DatabaseTable() (map[string]string, error) {
	table := maps.Clone(c.Databases)
	if table == nil {
		table = map[string]string{}
	}
	if c.DatabasesFile == "" {
		return table, nil
	}

	var fromFile map[string]string
	if err := config.LoadYAML(c.DatabasesFile, &fromFile); err != nil {
		return nil, err
	}
	maps.Copy(table, fromFile)
	return table, nil
}

// NewFactoryFromConfig builds a Factory dialing MongoDB with mcfg's base
// endpoint and handshake parameters and cfg's tenant table.
func NewFactoryFromConfig(mcfg mongo.Config, cfg Config, opts ...FactoryOption) (*Factory, error) {
	table, err := cfg.DatabaseTable()
	if err != nil {
		return nil, err
	}

	configOpts := []FactoryOption{
		WithDatabases(table),
		WithHandshakeTimeout(cfg.HandshakeTimeout),
		WithFallbackSuffix(cfg.FallbackSuffix),
		WithStrict(cfg.Strict),
	}
	configOpts = append(configOpts, opts...)

	return NewFactory(mcfg.ConnectionURL, NewMongoDialer(mcfg), configOpts...)
}
