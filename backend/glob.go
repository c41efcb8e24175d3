// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package backend

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// TrackedGlobs returns the regular files below root whose slash separated
// path relative to root matches any of patterns.  `**` spans directories,
// `*` does not.  The result is sorted.
func TrackedGlobs(root string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", p)
		}
		globs = append(globs, g)
	}

	var matches []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, g := range globs {
			if g.Match(rel) {
				matches = append(matches, path)
				break
			}
		}

		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "could not walk %s", root)
	}

	sort.Strings(matches)

	return matches, nil
}
