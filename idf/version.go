// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import (
	"fmt"
	"iter"
	"os"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"idfkit.sh/cfg"
)

const (
	VersionMajorConst = "ESP_IDF_VERSION_MAJOR"
	VersionMinorConst = "ESP_IDF_VERSION_MINOR"
	VersionPatchConst = "ESP_IDF_VERSION_PATCH"

	versionConstType = "u32"
)

// SupportedVersions is the range of SDK releases the bindings are tested
// against.
const SupportedVersions = ">= 4.3"

var ErrMissingConstant = errors.New("failed to capture constant")

// Version of the SDK, as found in the generated bindings.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParseVersionFile reads the generated bindings at path and extracts the SDK
// version from them.
func ParseVersionFile(path string) (Version, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return Version{}, errors.Wrapf(err, "could not read bindings %s", path)
	}

	return ParseVersion(string(text))
}

// ParseVersion extracts the SDK version from generated bindings.  The binding
// generator does not expose constant values in any structured way, so the
// declarations are matched textually.
func ParseVersion(text string) (Version, error) {
	var v Version
	var err error

	if v.Major, err = grabConst(text, VersionMajorConst, versionConstType); err != nil {
		return Version{}, err
	}
	if v.Minor, err = grabConst(text, VersionMinorConst, versionConstType); err != nil {
		return Version{}, err
	}
	if v.Patch, err = grabConst(text, VersionPatchConst, versionConstType); err != nil {
		return Version{}, err
	}

	return v, nil
}

func grabConst(text, name, typ string) (uint32, error) {
	re, err := regexp.Compile(fmt.Sprintf(
		`\s+const\s+%s\s*:\s*%s\s*=\s*(\S+)\s*;`,
		regexp.QuoteMeta(name),
		regexp.QuoteMeta(typ),
	))
	if err != nil {
		return 0, err
	}

	match := re.FindStringSubmatch(text)
	if match == nil {
		return 0, errors.Wrap(ErrMissingConstant, name)
	}

	n, err := strconv.ParseUint(match[1], 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrMissingConstant, "%s: invalid value %q", name, match[1])
	}

	return uint32(n), nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) Semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), "", "")
}

// Supported reports whether v satisfies SupportedVersions.
func (v Version) Supported() bool {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return false
	}

	return c.Check(v.Semver())
}

// CfgArgs yields the version as string valued flags, so that code can match
// on the version and not only on presence.
func (v Version) CfgArgs() iter.Seq[cfg.Flag] {
	flags := []cfg.Flag{
		cfg.Valued(Namespace+"_full_version", v.String()),
		cfg.Valued(Namespace+"_version", fmt.Sprintf("%d.%d", v.Major, v.Minor)),
		cfg.Valued(Namespace+"_major_version", strconv.FormatUint(uint64(v.Major), 10)),
		cfg.Valued(Namespace+"_minor_version", strconv.FormatUint(uint64(v.Minor), 10)),
		cfg.Valued(Namespace+"_patch_version", strconv.FormatUint(uint64(v.Patch), 10)),
	}

	return func(yield func(cfg.Flag) bool) {
		for _, f := range flags {
			if !yield(f) {
				return
			}
		}
	}
}
