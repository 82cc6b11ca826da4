// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package remote

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

type fileSource struct {
	fsys afero.Fs
}

func (s *fileSource) Read(ctx context.Context, loc Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi, err := s.fsys.Stat(loc.Path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", loc.Path)
	}
	if fi.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", loc.Path, MaxDocumentSize)
	}

	return afero.ReadFile(s.fsys, loc.Path)
}
