// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package native

import (
	"context"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"

	"idfkit.sh/log"
)

// ReferenceName maps a configured SDK version onto a git reference.  Release
// versions are tags of the form vMAJOR.MINOR[.PATCH], anything else is taken
// as a branch name.
func ReferenceName(version string) (plumbing.ReferenceName, error) {
	if version == "" {
		return "", errors.New("no ESP-IDF version configured")
	}

	if _, err := semver.NewVersion(version); err != nil {
		return plumbing.NewBranchReferenceName(version), nil
	}

	return plumbing.NewTagReferenceName("v" + strings.TrimPrefix(version, "v")), nil
}

// Checkout clones repository at the version into dir, unless dir already holds
// a checkout.
func Checkout(ctx context.Context, repository, version, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		if _, err := git.PlainOpen(dir); err == nil {
			log.G(ctx).WithField("dir", dir).Debug("reusing ESP-IDF checkout")
			return nil
		}
		return errors.Errorf("%s exists but is not a git repository", dir)
	}

	ref, err := ReferenceName(version)
	if err != nil {
		return err
	}

	log.G(ctx).WithField("ref", ref.Short()).Infof("cloning %s", repository)

	if _, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:               repository,
		ReferenceName:     ref,
		SingleBranch:      true,
		Depth:             1,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		Tags:              git.NoTags,
	}); err != nil {
		_ = os.RemoveAll(dir)
		return errors.Wrapf(err, "could not clone %s at %s", repository, ref.Short())
	}

	return nil
}
