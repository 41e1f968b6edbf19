// Package azdo implements a minimal REST client for an Azure-DevOps-style
// build server: build definitions, builds, test runs, and test results.
//
// The client covers exactly the read paths the test-query tool needs. Each
// call is a single GET authenticated with a personal access token; no
// connection state is kept beyond the underlying http.Client.
package azdo

const (
	apiVersion = "7.1"

	// Build result filter for qualifying builds.
	resultFilter = "succeeded,partiallySucceeded"
	statusFilter = "completed"
)

// Definition is a named build pipeline definition.
type Definition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Build is one execution of a definition.
type Build struct {
	ID          int    `json:"id"`
	BuildNumber string `json:"buildNumber"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	URI         string `json:"uri"`
}

// TestRun is a set of automated test executions recorded against a build.
type TestRun struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TestResult is a single test-case result within a run. Outcome is the
// server's verbatim string (for example "Passed" or "Failed").
type TestResult struct {
	TestCaseTitle string  `json:"testCaseTitle"`
	Outcome       string  `json:"outcome"`
	DurationInMS  float64 `json:"durationInMs"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
	StackTrace    string  `json:"stackTrace,omitempty"`
}

// listResponse is the standard paged envelope the server wraps lists in.
type listResponse[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}
