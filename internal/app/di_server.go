package app

import (
	"context"
	"errors"
	"fmt"

	authService "github.com/Coops0/jrnlapp/internal/auth/service"
	"github.com/Coops0/jrnlapp/internal/http"
	"github.com/Coops0/jrnlapp/internal/metrics"
)

// ErrJWTSecretNotSet is returned when the API is started without AUTH_JWT_SECRET.
var ErrJWTSecretNotSet = errors.New("AUTH_JWT_SECRET is not set")

type serverComponents struct {
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]
	tokenService    lazy[authService.TokenService]
	httpServer      lazy[*http.Server]
	metricsServer   lazy[*http.MetricsServer]
}

// MetricsProvider returns nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics falls back to a no-op recorder when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

func (c *Container) TokenService() (authService.TokenService, error) {
	return c.tokenService.get(func() (authService.TokenService, error) {
		if c.config.AuthJWTSecret == "" {
			return nil, ErrJWTSecretNotSet
		}
		return authService.NewTokenService([]byte(c.config.AuthJWTSecret)), nil
	})
}

// HTTPServer builds the API server. ctx bounds middleware background work and
// should live as long as the server.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		entryHandler, err := c.EntryHandler()
		if err != nil {
			return nil, err
		}
		tokenService, err := c.TokenService()
		if err != nil {
			return nil, err
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}

		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		server.SetupRouter(ctx, c.config, entryHandler, tokenService, provider)
		return server, nil
	})
}

// MetricsServer returns nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil || provider == nil {
			return nil, err
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}
