package azdo_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jlisowski/canary/azdo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Definitions(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"value":[{"id":42,"name":"Nightly"}]}`))
	}))
	defer srv.Close()

	client := azdo.New(srv.URL+"/", "secret-pat")
	defs, err := client.Definitions(context.Background(), "MyProject", "Nightly")
	require.NoError(t, err)

	require.Len(t, defs, 1)
	assert.Equal(t, 42, defs[0].ID)
	assert.Equal(t, "Nightly", defs[0].Name)

	assert.Equal(t, "/MyProject/_apis/build/definitions", gotPath)
	assert.Equal(t, []string{"Nightly"}, gotQuery["name"])
	assert.Equal(t, []string{"7.1"}, gotQuery["api-version"])

	// PAT auth: basic auth with empty user name.
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":secret-pat"))
	assert.Equal(t, want, gotAuth)
}

func TestClient_LatestBuild(t *testing.T) {
	t.Parallel()

	t.Run("returns most recent qualifying build", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"count":1,"value":[{"id":7,"buildNumber":"20260825.1","status":"completed","result":"succeeded","uri":"vstfs:///Build/Build/7"}]}`))
		}))
		defer srv.Close()

		client := azdo.New(srv.URL, "pat")
		build, err := client.LatestBuild(context.Background(), "MyProject", 42)
		require.NoError(t, err)

		require.NotNil(t, build)
		assert.Equal(t, 7, build.ID)
		assert.Equal(t, "20260825.1", build.BuildNumber)
		assert.Equal(t, "vstfs:///Build/Build/7", build.URI)

		assert.Equal(t, []string{"42"}, gotQuery["definitions"])
		assert.Equal(t, []string{"completed"}, gotQuery["statusFilter"])
		assert.Equal(t, []string{"succeeded,partiallySucceeded"}, gotQuery["resultFilter"])
		assert.Equal(t, []string{"1"}, gotQuery["$top"])
	})

	t.Run("no builds returns nil without error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"count":0,"value":[]}`))
		}))
		defer srv.Close()

		client := azdo.New(srv.URL, "pat")
		build, err := client.LatestBuild(context.Background(), "MyProject", 42)
		require.NoError(t, err)
		assert.Nil(t, build)
	})
}

func TestClient_TestRuns(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"count":2,"value":[{"id":101,"name":"Unit"},{"id":102,"name":"Integration"}]}`))
	}))
	defer srv.Close()

	client := azdo.New(srv.URL, "pat")
	runs, err := client.TestRuns(context.Background(), "MyProject", "vstfs:///Build/Build/7")
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, 101, runs[0].ID)
	assert.Equal(t, "Integration", runs[1].Name)

	assert.Equal(t, "/MyProject/_apis/test/runs", gotPath)
	assert.Equal(t, []string{"vstfs:///Build/Build/7"}, gotQuery["buildUri"])
}

func TestClient_TestResults(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"count":1,"value":[{"testCaseTitle":"LoginTests.Smoke","outcome":"Passed","durationInMs":120.5}]}`))
	}))
	defer srv.Close()

	client := azdo.New(srv.URL, "pat")
	results, err := client.TestResults(context.Background(), "MyProject", 101)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "LoginTests.Smoke", results[0].TestCaseTitle)
	assert.Equal(t, "Passed", results[0].Outcome)
	assert.Equal(t, 120.5, results[0].DurationInMS)

	assert.Equal(t, "/MyProject/_apis/test/runs/101/results", gotPath)
}

func TestClient_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"TF400813: access denied"}`))
	}))
	defer srv.Close()

	client := azdo.New(srv.URL, "bad-pat")
	_, err := client.Definitions(context.Background(), "MyProject", "Nightly")
	require.Error(t, err)

	var apiErr *azdo.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "TF400813")
}

func TestClient_ProjectNameEscaped(t *testing.T) {
	t.Parallel()

	var gotRawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"count":0,"value":[]}`))
	}))
	defer srv.Close()

	client := azdo.New(srv.URL, "pat")
	_, err := client.Definitions(context.Background(), "My Project", "Nightly")
	require.NoError(t, err)

	assert.Equal(t, "/My%20Project/_apis/build/definitions", gotRawPath)
}
