package main

import (
	"os"

	"github.com/jlisowski/canary"
	"github.com/jlisowski/canary/azdo"
	"github.com/jlisowski/canary/testquery"
	"github.com/rs/zerolog"
)

// newRegistry builds the tool registry exposed to the model. Registration
// order is the order tools appear in the catalog.
func newRegistry(logger zerolog.Logger) (*canary.Registry, error) {
	registry := canary.NewRegistry()

	resolver := testquery.New()
	resolver.NewClient = func(cfg testquery.Config) testquery.BuildClient {
		return azdo.New(cfg.CollectionURL, cfg.AccessToken, azdo.WithLogger(logger))
	}
	if err := registry.Register(testquery.Tool(resolver, testquery.EnvConfig(os.Getenv))); err != nil {
		return nil, err
	}

	return registry, nil
}
