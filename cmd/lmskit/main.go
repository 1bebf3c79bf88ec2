package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/lmskit/pkg/config"
	"github.com/dmitrymomot/lmskit/pkg/environment"
	"github.com/dmitrymomot/lmskit/pkg/httpserver"
	"github.com/dmitrymomot/lmskit/pkg/jwt"
	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/mongo"
	"github.com/dmitrymomot/lmskit/pkg/requestid"
	"github.com/dmitrymomot/lmskit/pkg/tenant"
	"github.com/dmitrymomot/lmskit/pkg/tenantdb"
	"github.com/dmitrymomot/lmskit/svc/lms"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)

	log := logger.NewFromConfig(logCfg,
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), log, environment.Parse(logCfg.Env)); err != nil {
		log.Error("lmskit stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, env environment.Environment) error {
	var (
		mongoCfg  mongo.Config
		tenantCfg tenantdb.Config
		jwtCfg    jwt.Config
		httpCfg   httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&tenantCfg) },
		func() error { return config.Load(&jwtCfg) },
		func() error { return config.Load(&httpCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := tenantdb.NewMetrics(reg)

	factory, err := tenantdb.NewFactoryFromConfig(mongoCfg, tenantCfg,
		tenantdb.WithFactoryLogger(log),
		tenantdb.WithFactoryMetrics(metrics),
	)
	if err != nil {
		return err
	}
	registry := tenantdb.NewRegistry(factory,
		tenantdb.WithRegistryLogger(log),
		tenantdb.WithRegistryMetrics(metrics),
	)
	registrar := tenantdb.NewRegistrar(lms.Schemas(),
		tenantdb.WithRegistrarLogger(log),
		tenantdb.WithRegistrarMetrics(metrics),
	)

	var auth *jwt.Service
	if jwtCfg.SigningKey != "" {
		if auth, err = jwt.NewFromConfig(jwtCfg); err != nil {
			return err
		}
	} else {
		log.Warn("JWT_SIGNING_KEY is not set: token claims are ignored and admin routes are disabled")
	}

	router := newRouter(routerDeps{
		log:       log,
		env:       env,
		metrics:   reg,
		registry:  registry,
		registrar: registrar,
		auth:      auth,
		tenantCfg: tenantCfg,
	})

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(registry.CloseAll),
	)
	return srv.Run(ctx, router)
}
