// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package remote retrieves a committed workflow to compare generated output against
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/package-url/packageurl-go"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/workflowgen/schema"
)

// QualifierTokenFromEnv is the package URL qualifier naming the environment variable holding a token
const QualifierTokenFromEnv = "token-from-env"

// QualifierBaseURL is the package URL qualifier overriding the API base URL
const QualifierBaseURL = "base"

// MaxDocumentSize is the largest workflow that will be read from any location
const MaxDocumentSize = 1 << 20

// Kind is where a committed workflow lives
type Kind string

// Supported location kinds
const (
	File   Kind = "file"
	HTTP   Kind = "http"
	GitHub Kind = "github"
	GitLab Kind = "gitlab"
)

// Location is a parsed --against value
type Location struct {
	Kind Kind
	// Raw is the location as given by the user
	Raw string
	// Path is the local file, or the file within a repository
	Path string
	// URL is set for HTTP locations
	URL *url.URL

	Owner string
	Repo  string
	// Ref is a branch, tag or commit, the default branch when empty
	Ref string

	TokenEnv string
	BaseURL  string
}

// ParseLocation parses a location, bare paths are local files
//
//	.github/workflows/ci.yml
//	file:.github/workflows/ci.yml
//	https://raw.githubusercontent.com/owner/repo/main/.github/workflows/ci.yml
//	pkg:github/owner/repo@main#.github/workflows/ci.yml
//	pkg:gitlab/group/repo@main?base=https://gitlab.example.com#.github/workflows/ci.yml
func ParseLocation(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		return Location{}, errors.New("location must not be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}

	switch u.Scheme {
	case "":
		return Location{Kind: File, Raw: raw, Path: filepath.Clean(raw)}, nil
	case "file":
		p := u.Opaque
		if p == "" {
			p = u.Path
		}
		if p == "" {
			return Location{}, fmt.Errorf("%s does not name a file", raw)
		}
		return Location{Kind: File, Raw: raw, Path: filepath.Clean(p)}, nil
	case "http", "https":
		return Location{Kind: HTTP, Raw: raw, URL: u}, nil
	case "pkg":
		return parsePackage(raw)
	default:
		return Location{}, fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
}

func parsePackage(raw string) (Location, error) {
	pURL, err := packageurl.FromString(raw)
	if err != nil {
		return Location{}, err
	}

	var kind Kind
	switch pURL.Type {
	case packageurl.TypeGithub:
		kind = GitHub
	case packageurl.TypeGitlab:
		kind = GitLab
	default:
		return Location{}, fmt.Errorf("unsupported package type: %q", pURL.Type)
	}

	if pURL.Namespace == "" || pURL.Name == "" {
		return Location{}, fmt.Errorf("%s must name an owner and a repository", raw)
	}
	if pURL.Subpath == "" {
		return Location{}, fmt.Errorf("%s does not name a file, add one as #path/to/workflow.yml", raw)
	}

	q := pURL.Qualifiers.Map()
	return Location{
		Kind:     kind,
		Raw:      raw,
		Path:     pURL.Subpath,
		Owner:    pURL.Namespace,
		Repo:     pURL.Name,
		Ref:      pURL.Version,
		TokenEnv: q[QualifierTokenFromEnv],
		BaseURL:  q[QualifierBaseURL],
	}, nil
}

// FetchError is returned when a committed workflow could not be retrieved
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is returned when a retrieved file is not a workflow document
type ParseError struct {
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q is not a workflow: %v", e.Location, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Document is a committed workflow
type Document struct {
	Location Location
	// Data is the file exactly as stored
	Data     []byte
	Workflow schema.Workflow
}

// Source reads the contents of a committed workflow
type Source interface {
	Read(ctx context.Context, loc Location) ([]byte, error)
}

// Service reads committed workflows from any supported location
type Service struct {
	client    *http.Client
	fsys      afero.Fs
	lookupEnv func(string) (string, bool)
}

// Option configures a Service
type Option func(*Service)

// WithFS sets the filesystem used for local files
func WithFS(fs afero.Fs) Option {
	return func(s *Service) {
		s.fsys = fs
	}
}

// WithClient sets the HTTP client used for remote locations
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithLookupEnv sets how tokens are read from the environment
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Service) {
		s.lookupEnv = fn
	}
}

// NewService creates a new Service
func NewService(opts ...Option) *Service {
	svc := &Service{}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.fsys == nil {
		svc.fsys = afero.NewOsFs()
	}
	if svc.client == nil {
		svc.client = &http.Client{}
	}
	if svc.lookupEnv == nil {
		svc.lookupEnv = os.LookupEnv
	}
	return svc
}

// Source returns the source serving loc
func (s *Service) Source(loc Location) (Source, error) {
	switch loc.Kind {
	case File:
		return &fileSource{fsys: s.fsys}, nil
	case HTTP:
		return &httpSource{client: s.client}, nil
	case GitHub:
		return &githubSource{client: s.client, lookupEnv: s.lookupEnv}, nil
	case GitLab:
		return &gitlabSource{client: s.client, lookupEnv: s.lookupEnv}, nil
	default:
		return nil, fmt.Errorf("unsupported location kind: %q", loc.Kind)
	}
}

// Get retrieves and parses the committed workflow at raw
//
// A location that cannot be read returns a *FetchError, one that does not hold
// a workflow returns a *ParseError.
func (s *Service) Get(ctx context.Context, raw string) (*Document, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	src, err := s.Source(loc)
	if err != nil {
		return nil, err
	}

	logger := log.FromContext(ctx)
	logger.Debug("fetching committed workflow", "kind", loc.Kind, "location", raw)

	data, err := src.Read(ctx, loc)
	if err != nil {
		return nil, &FetchError{Location: raw, Err: err}
	}

	wf, err := schema.Read(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Location: raw, Err: err}
	}
	if wf.Name == "" && len(wf.Jobs) == 0 {
		return nil, &ParseError{Location: raw, Err: errors.New("document has neither a name nor jobs")}
	}

	logger.Debug("fetched committed workflow", "location", raw, "bytes", len(data), "jobs", len(wf.Jobs))

	return &Document{Location: loc, Data: data, Workflow: wf}, nil
}

// readLimited reads r, failing once it grows past MaxDocumentSize
func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxDocumentSize {
		return nil, fmt.Errorf("larger than %d bytes", MaxDocumentSize)
	}
	return b, nil
}

// token resolves the API token for a repository location
//
// The fallback variable is optional, a variable named through the token-from-env qualifier is not.
func token(lookupEnv func(string) (string, bool), name, fallback string) (string, error) {
	if name == "" {
		v, _ := lookupEnv(fallback)
		return v, nil
	}
	v, ok := lookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%s=%s is set but %s is not in the environment", QualifierTokenFromEnv, name, name)
	}
	return v, nil
}
