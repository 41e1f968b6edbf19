package mock

import (
	"context"
	"sync/atomic"

	"github.com/jlisowski/canary/azdo"
	"github.com/jlisowski/canary/testquery"
)

// Interface compliance check.
var _ testquery.BuildClient = (*BuildClient)(nil)

// BuildClient is a test double for testquery.BuildClient. Set the function
// fields for the methods you need. Calls counts every method call, which
// lets tests prove that configuration failures happen before any remote
// call is attempted.
type BuildClient struct {
	Calls atomic.Int64

	DefinitionsFn func(ctx context.Context, project, name string) ([]azdo.Definition, error)
	LatestBuildFn func(ctx context.Context, project string, definitionID int) (*azdo.Build, error)
	TestRunsFn    func(ctx context.Context, project, buildURI string) ([]azdo.TestRun, error)
	TestResultsFn func(ctx context.Context, project string, runID int) ([]azdo.TestResult, error)
}

// Definitions delegates to DefinitionsFn.
func (c *BuildClient) Definitions(ctx context.Context, project, name string) ([]azdo.Definition, error) {
	c.Calls.Add(1)
	return c.DefinitionsFn(ctx, project, name)
}

// LatestBuild delegates to LatestBuildFn.
func (c *BuildClient) LatestBuild(ctx context.Context, project string, definitionID int) (*azdo.Build, error) {
	c.Calls.Add(1)
	return c.LatestBuildFn(ctx, project, definitionID)
}

// TestRuns delegates to TestRunsFn.
func (c *BuildClient) TestRuns(ctx context.Context, project, buildURI string) ([]azdo.TestRun, error) {
	c.Calls.Add(1)
	return c.TestRunsFn(ctx, project, buildURI)
}

// TestResults delegates to TestResultsFn.
func (c *BuildClient) TestResults(ctx context.Context, project string, runID int) ([]azdo.TestResult, error) {
	c.Calls.Add(1)
	return c.TestResultsFn(ctx, project, runID)
}
