// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

type gitlabSource struct {
	client    *http.Client
	lookupEnv func(string) (string, bool)
}

func (s *gitlabSource) Read(ctx context.Context, loc Location) ([]byte, error) {
	tok, err := token(s.lookupEnv, loc.TokenEnv, "GITLAB_TOKEN")
	if err != nil {
		return nil, err
	}

	base := loc.BaseURL
	if base == "" {
		base = "https://gitlab.com"
	}

	c, err := gitlab.NewClient(tok, gitlab.WithBaseURL(base), gitlab.WithHTTPClient(s.client))
	if err != nil {
		return nil, err
	}

	ref := loc.Ref
	if ref == "" {
		ref = "HEAD"
	}

	f, _, err := c.RepositoryFiles.GetFile(loc.Owner+"/"+loc.Repo, loc.Path, &gitlab.GetFileOptions{
		Ref: gitlab.Ptr(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if f.Size > MaxDocumentSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", loc.Path, MaxDocumentSize)
	}

	switch f.Encoding {
	case "base64":
		return base64.StdEncoding.DecodeString(f.Content)
	case "", "text":
		return []byte(f.Content), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding: %q", f.Encoding)
	}
}
