package testquery

import (
	"context"

	"github.com/jlisowski/canary"
)

// Environment variables holding the build-server connection settings.
const (
	EnvCollectionURL = "AZDO_COLLECTION_URL"
	EnvAccessToken   = "AZDO_ACCESS_TOKEN"
)

// ToolName is the catalog name of the test-query tool.
const ToolName = "query_test_results"

// ConfigSource yields the configuration for one invocation.
type ConfigSource func() Config

// EnvConfig returns a ConfigSource reading the conventional environment
// variables through getenv (usually os.Getenv). Lookup happens per
// invocation, so credentials added after startup are picked up.
func EnvConfig(getenv func(string) string) ConfigSource {
	return func() Config {
		return Config{
			CollectionURL: getenv(EnvCollectionURL),
			AccessToken:   getenv(EnvAccessToken),
		}
	}
}

// Tool returns the descriptor exposing the resolver to the tool registry.
// The handler always returns an Outcome payload; domain and configuration
// failures are reported inside the Outcome, never as handler errors.
func Tool(r *Resolver, cfg ConfigSource) canary.ToolDescriptor {
	return canary.ToolDescriptor{
		Name: ToolName,
		Description: "Query the latest completed build of a pipeline for test-case results. " +
			"Finds the pipeline definition by exact name, picks its most recent successful " +
			"or partially successful build, and returns every test case whose title contains " +
			"the given substring, with outcome, duration, and failure details.",
		Params: []canary.Param{
			{
				Name:        "project",
				Type:        canary.ParamString,
				Description: "Project that contains the pipeline",
				Required:    true,
			},
			{
				Name:        "definition",
				Type:        canary.ParamString,
				Description: "Exact name of the pipeline definition",
				Required:    true,
			},
			{
				Name:        "test_case",
				Type:        canary.ParamString,
				Description: "Substring matched case-insensitively against test-case titles",
				Required:    true,
			},
		},
		Handler: func(ctx context.Context, args canary.Args) (any, error) {
			return r.Resolve(ctx, cfg(),
				args.String("project"),
				args.String("definition"),
				args.String("test_case"),
			), nil
		},
	}
}
