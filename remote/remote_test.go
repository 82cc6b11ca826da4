// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package remote

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflow = `name: CI
on:
  push:
    branches:
      - main
jobs:
  build:
    name: Build and Test
    runs-on: ubuntu-latest
    steps:
      - name: Checkout Code
        uses: actions/checkout@v4
`

func noEnv(string) (string, bool) { return "", false }

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		raw         string
		expected    Location
		expectedErr string
	}{
		{
			raw:      ".github/workflows/ci.yml",
			expected: Location{Kind: File, Raw: ".github/workflows/ci.yml", Path: ".github/workflows/ci.yml"},
		},
		{
			raw:      "file:./ci.yml",
			expected: Location{Kind: File, Raw: "file:./ci.yml", Path: "ci.yml"},
		},
		{
			raw:      "https://example.com/ci.yml",
			expected: Location{Kind: HTTP, Raw: "https://example.com/ci.yml", URL: &url.URL{Scheme: "https", Host: "example.com", Path: "/ci.yml"}},
		},
		{
			raw: "pkg:github/acme/widgets@v1#.github/workflows/ci.yml",
			expected: Location{
				Kind:  GitHub,
				Raw:   "pkg:github/acme/widgets@v1#.github/workflows/ci.yml",
				Path:  ".github/workflows/ci.yml",
				Owner: "acme",
				Repo:  "widgets",
				Ref:   "v1",
			},
		},
		{
			raw: "pkg:gitlab/acme/widgets?base=https://gitlab.example.com&token-from-env=CI_JOB_TOKEN#ci.yml",
			expected: Location{
				Kind:     GitLab,
				Raw:      "pkg:gitlab/acme/widgets?base=https://gitlab.example.com&token-from-env=CI_JOB_TOKEN#ci.yml",
				Path:     "ci.yml",
				Owner:    "acme",
				Repo:     "widgets",
				TokenEnv: "CI_JOB_TOKEN",
				BaseURL:  "https://gitlab.example.com",
			},
		},
		{
			raw:         " ",
			expectedErr: "location must not be empty",
		},
		{
			raw:         "ftp://example.com/ci.yml",
			expectedErr: `unsupported scheme: "ftp"`,
		},
		{
			raw:         "pkg:npm/left-pad@1.0.0#ci.yml",
			expectedErr: `unsupported package type: "npm"`,
		},
		{
			raw:         "pkg:github/widgets@v1#ci.yml",
			expectedErr: "pkg:github/widgets@v1#ci.yml must name an owner and a repository",
		},
		{
			raw:         "pkg:github/acme/widgets@v1",
			expectedErr: "pkg:github/acme/widgets@v1 does not name a file, add one as #path/to/workflow.yml",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			loc, err := ParseLocation(tc.raw)
			if tc.expectedErr != "" {
				require.EqualError(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, loc)
		})
	}
}

func TestFileSource(t *testing.T) {
	ctx := t.Context()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".github/workflows/ci.yml", []byte(workflow), 0o644))
	require.NoError(t, afero.WriteFile(fs, "huge.yml", []byte(strings.Repeat("#", MaxDocumentSize+1)), 0o644))

	src := &fileSource{fsys: fs}

	b, err := src.Read(ctx, Location{Kind: File, Path: ".github/workflows/ci.yml"})
	require.NoError(t, err)
	assert.Equal(t, workflow, string(b))

	_, err = src.Read(ctx, Location{Kind: File, Path: ".github/workflows"})
	require.EqualError(t, err, ".github/workflows is a directory")

	_, err = src.Read(ctx, Location{Kind: File, Path: "missing.yml"})
	require.EqualError(t, err, "open missing.yml: file does not exist")

	_, err = src.Read(ctx, Location{Kind: File, Path: "huge.yml"})
	require.EqualError(t, err, "huge.yml is larger than 1048576 bytes")
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ci.yml":
			assert.Equal(t, "workflowgen", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(workflow))
		case "/huge.yml":
			_, _ = w.Write([]byte(strings.Repeat("#", MaxDocumentSize+1)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	src := &httpSource{client: server.Client()}

	read := func(p string) ([]byte, error) {
		loc, err := ParseLocation(server.URL + p)
		require.NoError(t, err)
		return src.Read(t.Context(), loc)
	}

	b, err := read("/ci.yml")
	require.NoError(t, err)
	assert.Equal(t, workflow, string(b))

	_, err = read("/missing.yml")
	require.EqualError(t, err, "server responded 404 Not Found")

	_, err = read("/huge.yml")
	require.EqualError(t, err, "larger than 1048576 bytes")
}

func TestGitHubSource(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")

		file := map[string]any{
			"type":     "file",
			"name":     "ci.yml",
			"path":     ".github/workflows/ci.yml",
			"size":     len(workflow),
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(workflow)),
		}

		switch {
		case r.URL.Path == "/repos/acme/widgets/contents/.github/workflows/ci.yml" && r.URL.Query().Get("ref") == "v1":
			_ = json.NewEncoder(w).Encode(file)
		case r.URL.Path == "/repos/acme/widgets/contents/.github/workflows":
			_ = json.NewEncoder(w).Encode([]any{file})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
	t.Cleanup(server.Close)

	read := func(raw string, lookupEnv func(string) (string, bool)) ([]byte, error) {
		loc, err := ParseLocation(raw)
		require.NoError(t, err)
		src := &githubSource{client: server.Client(), lookupEnv: lookupEnv}
		return src.Read(t.Context(), loc)
	}

	b, err := read("pkg:github/acme/widgets@v1?base="+server.URL+"#.github/workflows/ci.yml", noEnv)
	require.NoError(t, err)
	assert.Equal(t, workflow, string(b))
	assert.Empty(t, gotAuth)

	_, err = read("pkg:github/acme/widgets@v1?base="+server.URL+"#.github/workflows/ci.yml", env(map[string]string{"GITHUB_TOKEN": "ghp_test"}))
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_test", gotAuth)

	_, err = read("pkg:github/acme/widgets@v1?base="+server.URL+"&token-from-env=DEPLOY_TOKEN#.github/workflows/ci.yml", env(map[string]string{"DEPLOY_TOKEN": "ghp_deploy"}))
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_deploy", gotAuth)

	_, err = read("pkg:github/acme/widgets@v1?base="+server.URL+"#.github/workflows", noEnv)
	require.EqualError(t, err, ".github/workflows is a directory in acme/widgets")

	_, err = read("pkg:github/acme/widgets@v2?base="+server.URL+"#.github/workflows/ci.yml", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = read("pkg:github/acme/widgets@v1?token-from-env=DEPLOY_TOKEN#ci.yml", noEnv)
	require.EqualError(t, err, "token-from-env=DEPLOY_TOKEN is set but DEPLOY_TOKEN is not in the environment")
}

func TestGitLabSource(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Private-Token")
		w.Header().Set("Content-Type", "application/json")

		if strings.HasPrefix(r.URL.Path, "/api/v4/projects/") &&
			strings.HasSuffix(r.URL.Path, "/repository/files/.github/workflows/ci.yml") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"file_name": "ci.yml",
				"file_path": ".github/workflows/ci.yml",
				"size":      len(workflow),
				"encoding":  "base64",
				"content":   base64.StdEncoding.EncodeToString([]byte(workflow)),
				"ref":       r.URL.Query().Get("ref"),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 File Not Found"}`))
	}))
	t.Cleanup(server.Close)

	read := func(raw string, lookupEnv func(string) (string, bool)) ([]byte, error) {
		loc, err := ParseLocation(raw)
		require.NoError(t, err)
		src := &gitlabSource{client: server.Client(), lookupEnv: lookupEnv}
		return src.Read(t.Context(), loc)
	}

	b, err := read("pkg:gitlab/acme/widgets@main?base="+server.URL+"&token-from-env=CI_JOB_TOKEN#.github/workflows/ci.yml",
		env(map[string]string{"CI_JOB_TOKEN": "glpat-test"}))
	require.NoError(t, err)
	assert.Equal(t, workflow, string(b))
	assert.Equal(t, "glpat-test", gotToken)

	_, err = read("pkg:gitlab/acme/widgets@main?base="+server.URL+"#missing.yml", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = read("pkg:gitlab/acme/widgets@main?token-from-env=CI_JOB_TOKEN#ci.yml", noEnv)
	require.EqualError(t, err, "token-from-env=CI_JOB_TOKEN is set but CI_JOB_TOKEN is not in the environment")
}

func TestServiceGet(t *testing.T) {
	ctx := log.WithContext(t.Context(), log.New(io.Discard))

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ci.yml", []byte(workflow), 0o644))
	require.NoError(t, afero.WriteFile(fs, "empty.yml", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "list.yml", []byte("- a\n- b\n"), 0o644))

	svc := NewService(WithFS(fs), WithLookupEnv(noEnv))

	for _, raw := range []string{"ci.yml", "file:ci.yml"} {
		doc, err := svc.Get(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, File, doc.Location.Kind)
		assert.Equal(t, workflow, string(doc.Data))
		assert.Equal(t, "CI", doc.Workflow.Name)
		assert.Contains(t, doc.Workflow.Jobs, "build")
	}

	_, err := svc.Get(ctx, "missing.yml")
	var fErr *FetchError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, "missing.yml", fErr.Location)
	assert.Equal(t, `failed to fetch "missing.yml": open missing.yml: file does not exist`, err.Error())

	var pErr *ParseError
	_, err = svc.Get(ctx, "empty.yml")
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, `"empty.yml" is not a workflow: document has neither a name nor jobs`, err.Error())

	_, err = svc.Get(ctx, "list.yml")
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "list.yml", pErr.Location)
	assert.NotErrorAs(t, err, &fErr)

	_, err = svc.Get(ctx, "ftp://example.com/ci.yml")
	require.EqualError(t, err, `unsupported scheme: "ftp"`)
}

func TestServiceSource(t *testing.T) {
	svc := NewService()

	for kind, expected := range map[Kind]Source{
		File:   &fileSource{},
		HTTP:   &httpSource{},
		GitHub: &githubSource{},
		GitLab: &gitlabSource{},
	} {
		src, err := svc.Source(Location{Kind: kind})
		require.NoError(t, err)
		assert.IsType(t, expected, src)
	}

	_, err := svc.Source(Location{Kind: "s3"})
	require.EqualError(t, err, `unsupported location kind: "s3"`)
}
