package mongo

import "time"

// Config holds the shared base endpoint and handshake parameters used for
// every tenant connection.
type Config struct {
	ConnectionURL          string        `env:"MONGODB_URL,required"`                             // ConnectionURL is the base endpoint; the tenant database name is set per connection.
	ConnectTimeout         time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`         // ConnectTimeout bounds establishing a single TCP connection.
	SocketTimeout          time.Duration `env:"MONGODB_SOCKET_TIMEOUT" envDefault:"45s"`          // SocketTimeout is applied as the client-side operation timeout.
	ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"5s"` // ServerSelectionTimeout bounds finding a suitable server for the ping.
	HeartbeatInterval      time.Duration `env:"MONGODB_HEARTBEAT_INTERVAL" envDefault:"10s"`      // HeartbeatInterval is how often the driver checks server health.
	MaxPoolSize            uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"10"`            // MaxPoolSize is the maximum number of connections per tenant pool.
	MinPoolSize            uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`             // MinPoolSize is the minimum number of connections per tenant pool.
	MaxConnIdleTime        time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`     // MaxConnIdleTime is how long a pooled connection may stay idle.
	RetryWrites            bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`           // RetryWrites specifies whether to retry write operations.
	RetryReads             bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`            // RetryReads specifies whether to retry read operations.
}
