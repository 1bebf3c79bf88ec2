// Package mongo adapts the official MongoDB driver to per-tenant sessions.
//
// Every tenant gets its own Session opened against the shared base endpoint
// with the tenant's database name. Open performs the handshake (connect and
// ping the primary) with the bounded timing parameters of Config applied:
// connect timeout, operation timeout, pool bounds, retryable reads and writes,
// and majority write acknowledgement. Open never retries; callers decide.
//
// Lifecycle notifications are delivered through Hooks, driven by the
// driver's server monitor:
//
//   - OnConnected fires once the handshake ping succeeded
//   - OnError fires when a heartbeat fails on a healthy session
//   - OnReconnected fires on the first successful heartbeat after a failure
//   - OnDisconnected fires when the client is closed
//
// # Usage
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	s, err := mongo.Open(ctx, cfg, "mongodb://localhost:27017/NgoLms", "NgoLms", mongo.Hooks{
//		OnError: func(err error) { log.Println("tenant db unhealthy:", err) },
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close(context.Background())
//
//	if err := s.Attach(ctx, usersSchema); err != nil {
//		log.Println(err)
//	}
//
// # Configuration
//
// Config is environment driven (MONGODB_* variables) and loaded with
// pkg/config.
//
// # Error Handling
//
// Failures are joined with ErrFailedToConnectToMongo, ErrPingFailed or
// ErrAttachFailed so callers can use errors.Is.
//
// # See Also
//
// Documentation for the official driver: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2.
package mongo
