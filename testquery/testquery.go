// Package testquery implements the build test-results query tool: resolve a
// pipeline definition by name, select its latest qualifying build, and
// return the test-case results whose titles contain a requested substring.
package testquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlisowski/canary/azdo"
)

// Failure kinds recorded on an Outcome.
const (
	KindValidation         = "validation"
	KindConfiguration      = "configuration"
	KindDefinitionNotFound = "not_found:definition"
	KindBuildNotFound      = "not_found:build"
	KindTestCaseNotFound   = "not_found:test-case"
	KindInternal           = "internal"
)

// Config carries the per-invocation connection settings for the build
// server. It is resolved from the environment at invocation time, never at
// startup, so a missing credential surfaces as a tool failure rather than
// a boot failure.
type Config struct {
	CollectionURL string
	AccessToken   string
}

// BuildClient is the capability the resolver needs from the build server.
// azdo.Client is the production implementation; tests use fixtures.
type BuildClient interface {
	Definitions(ctx context.Context, project, name string) ([]azdo.Definition, error)
	LatestBuild(ctx context.Context, project string, definitionID int) (*azdo.Build, error)
	TestRuns(ctx context.Context, project, buildURI string) ([]azdo.TestRun, error)
	TestResults(ctx context.Context, project string, runID int) ([]azdo.TestResult, error)
}

// Compile-time interface check.
var _ BuildClient = (*azdo.Client)(nil)

// TestCaseResult is one filtered test-case result. Outcome is the server's
// verbatim outcome string.
type TestCaseResult struct {
	Title        string  `json:"title"`
	Outcome      string  `json:"outcome"`
	DurationMS   float64 `json:"duration_ms"`
	ErrorMessage string  `json:"error_message,omitempty"`
	StackTrace   string  `json:"stack_trace,omitempty"`
}

// Outcome is the structured result of one resolution. The trace lists every
// step taken, successful or not, so a human or model can see where a
// failure happened. Invariant: Success is false exactly when Results is
// empty.
type Outcome struct {
	Success bool             `json:"success"`
	Trace   []string         `json:"trace"`
	Results []TestCaseResult `json:"results,omitempty"`
	Kind    string           `json:"kind,omitempty"`
	Err     string           `json:"error,omitempty"`
}

// Resolver resolves test-case queries against a build server. NewClient
// constructs the client for one invocation; the default uses azdo.New, and
// tests substitute fixtures.
type Resolver struct {
	NewClient func(cfg Config) BuildClient
}

// New creates a Resolver backed by the azdo REST client.
func New() *Resolver {
	return &Resolver{
		NewClient: func(cfg Config) BuildClient {
			return azdo.New(cfg.CollectionURL, cfg.AccessToken)
		},
	}
}

// Resolve runs the staged query: definition by exact name, latest completed
// succeeded-or-partially-succeeded build, all test runs of that build, and
// the test-case results whose titles contain titleSubstring
// (case-insensitively), in discovery order. Every failure path returns an
// Outcome value carrying the accumulated trace; nothing is raised past this
// boundary.
func (r *Resolver) Resolve(ctx context.Context, cfg Config, project, definition, titleSubstring string) Outcome {
	var trace []string
	step := func(format string, args ...any) {
		trace = append(trace, fmt.Sprintf(format, args...))
	}
	fail := func(kind, format string, args ...any) Outcome {
		msg := fmt.Sprintf(format, args...)
		step("failed: %s", msg)
		return Outcome{Trace: trace, Kind: kind, Err: msg}
	}

	switch {
	case strings.TrimSpace(project) == "":
		return fail(KindValidation, "project name must not be blank")
	case strings.TrimSpace(definition) == "":
		return fail(KindValidation, "pipeline definition name must not be blank")
	case strings.TrimSpace(titleSubstring) == "":
		return fail(KindValidation, "test case title must not be blank")
	}

	if cfg.CollectionURL == "" {
		return fail(KindConfiguration, "collection endpoint URL is not configured (set %s)", EnvCollectionURL)
	}
	if cfg.AccessToken == "" {
		return fail(KindConfiguration, "access token is not configured (set %s)", EnvAccessToken)
	}

	step("connecting to %s", cfg.CollectionURL)
	client := r.NewClient(cfg)

	step("looking up definition %q in project %q", definition, project)
	defs, err := client.Definitions(ctx, project, definition)
	if err != nil {
		return fail(KindInternal, "definition lookup: %T: %s", err, err)
	}
	if len(defs) == 0 {
		return fail(KindDefinitionNotFound, "no build definition named %q in project %q", definition, project)
	}
	// Multiple definitions sharing a name are not disambiguated further;
	// the first match wins.
	def := defs[0]
	step("found %d definition(s); using %q (id %d)", len(defs), def.Name, def.ID)

	step("selecting latest completed build for definition %d", def.ID)
	build, err := client.LatestBuild(ctx, project, def.ID)
	if err != nil {
		return fail(KindInternal, "build lookup: %T: %s", err, err)
	}
	if build == nil {
		return fail(KindBuildNotFound, "no completed build for definition %q", def.Name)
	}
	step("selected build %s (id %d, result %s)", build.BuildNumber, build.ID, build.Result)

	step("enumerating test runs for build %s", build.URI)
	runs, err := client.TestRuns(ctx, project, build.URI)
	if err != nil {
		return fail(KindInternal, "test run enumeration: %T: %s", err, err)
	}
	step("found %d test run(s)", len(runs))

	needle := strings.ToLower(titleSubstring)
	var matched []TestCaseResult
	for _, run := range runs {
		results, err := client.TestResults(ctx, project, run.ID)
		if err != nil {
			return fail(KindInternal, "test results for run %d: %T: %s", run.ID, err, err)
		}
		kept := 0
		for _, res := range results {
			if !strings.Contains(strings.ToLower(res.TestCaseTitle), needle) {
				continue
			}
			matched = append(matched, TestCaseResult{
				Title:        res.TestCaseTitle,
				Outcome:      res.Outcome,
				DurationMS:   res.DurationInMS,
				ErrorMessage: res.ErrorMessage,
				StackTrace:   res.StackTrace,
			})
			kept++
		}
		step("run %q (id %d): %d of %d result(s) match %q", run.Name, run.ID, kept, len(results), titleSubstring)
	}

	if len(matched) == 0 {
		return fail(KindTestCaseNotFound, "no test case matching %q in the latest build of %q", titleSubstring, definition)
	}

	step("matched %d test case(s)", len(matched))
	return Outcome{Success: true, Trace: trace, Results: matched}
}
