// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
)

type githubSource struct {
	client    *http.Client
	lookupEnv func(string) (string, bool)
}

func (s *githubSource) Read(ctx context.Context, loc Location) ([]byte, error) {
	tok, err := token(s.lookupEnv, loc.TokenEnv, "GITHUB_TOKEN")
	if err != nil {
		return nil, err
	}

	c := github.NewClient(s.client)
	if tok != "" {
		c = c.WithAuthToken(tok)
	}
	if loc.BaseURL != "" {
		base, err := url.Parse(loc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid %s qualifier: %w", QualifierBaseURL, err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		c.BaseURL = base
	}

	file, _, _, err := c.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, &github.RepositoryContentGetOptions{
		Ref: loc.Ref,
	})
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory in %s/%s", loc.Path, loc.Owner, loc.Repo)
	}
	if file.GetSize() > MaxDocumentSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", loc.Path, MaxDocumentSize)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}
