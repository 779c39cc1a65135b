// Copyright 2023 by Harald Albrecht
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package bwinstall

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// InfoFilename is the name of the metadata file each installation package
// must carry in its top-level folder.
const InfoFilename = "package-info"

// DefaultConfigDir is the folder inside an installation package holding the
// per-domain deployment configuration documents, unless package-info names a
// different one.
const DefaultConfigDir = "envconfig"

// PackageInfo is the metadata an installation package declares about itself
// in its package-info file.
type PackageInfo struct {
	// AppName is the name of the BW application inside the domain.
	AppName string `yaml:"appname"`
	// Archive optionally names the enterprise archive file, relative to the
	// package folder. If empty, the package folder must contain exactly one
	// “.ear” file.
	Archive string `yaml:"archive"`
	// Config optionally names the deployment configuration folder, relative
	// to the package folder; it defaults to “envconfig”.
	Config string `yaml:"config"`
	// Prepare lists hook scripts to run before the archive is uploaded.
	Prepare []string `yaml:"prepare"`
	// Complete lists hook scripts to run after a successful installation.
	Complete []string `yaml:"complete"`
}

// Package represents an installation package folder to be installed into (or
// upgraded inside) a BW domain.
type Package struct {
	Dir         string      // package folder
	Info        PackageInfo // parsed package-info metadata
	ArchivePath string      // resolved enterprise archive path
	stageDir    string      // scratch folder, lazily created by Stage
}

// LoadPackage reads and validates the package-info metadata of the
// installation package in the specified folder and resolves its enterprise
// archive.
func LoadPackage(dir string) (*Package, error) {
	infoPath := filepath.Join(dir, InfoFilename)
	infoYAML, err := os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s, reason: %w", infoPath, err)
	}
	var info PackageInfo
	if err := yaml.Unmarshal(infoYAML, &info); err != nil {
		return nil, fmt.Errorf("malformed %s, reason: %w", infoPath, err)
	}
	if info.AppName == "" {
		return nil, fmt.Errorf("%s lacks an appname", infoPath)
	}
	pkg := &Package{
		Dir:  dir,
		Info: info,
	}
	if pkg.ArchivePath, err = findArchive(dir, info.Archive); err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("📦  package %q provides app %q with archive %q",
		dir, info.AppName, filepath.Base(pkg.ArchivePath)))
	return pkg, nil
}

// findArchive resolves the enterprise archive of a package: either the file
// explicitly named in package-info, or the sole *.ear file in the package
// folder.
func findArchive(dir string, archive string) (string, error) {
	if archive != "" {
		path := filepath.Join(dir, archive)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("package archive %q missing, reason: %w",
				archive, err)
		}
		return path, nil
	}
	ears, err := filepath.Glob(filepath.Join(dir, "*.ear"))
	if err != nil {
		return "", fmt.Errorf("cannot scan package folder %q, reason: %w", dir, err)
	}
	switch len(ears) {
	case 0:
		return "", fmt.Errorf("package %q lacks an enterprise archive", dir)
	case 1:
		return ears[0], nil
	}
	return "", fmt.Errorf("package %q contains multiple enterprise archives, "+
		"package-info needs an explicit archive key", dir)
}

// configDir returns the package's deployment configuration folder.
func (p *Package) configDir() string {
	if p.Info.Config != "" {
		return filepath.Join(p.Dir, p.Info.Config)
	}
	return filepath.Join(p.Dir, DefaultConfigDir)
}

// ConfigForDomain returns the path of the deployment configuration document
// to use as the package's base configuration when installing into the named
// domain: the domain-specific document if present, otherwise the default
// document, otherwise an error.
func (p *Package) ConfigForDomain(domain string) (string, error) {
	confdir := p.configDir()
	for _, name := range []string{domain + ".xml", "default.xml"} {
		path := filepath.Join(confdir, name)
		if _, err := os.Stat(path); err == nil {
			log.Info(fmt.Sprintf("🗒  using deployment configuration %q", path))
			return path, nil
		}
	}
	return "", fmt.Errorf(
		"package %q has neither %s.xml nor default.xml deployment configuration in %q",
		p.Dir, domain, confdir)
}

// Stage returns the package's scratch folder for exported and merged
// deployment configuration, creating a fresh temporary folder on first use
// and seeding it with a copy of the specified base configuration document.
// The package folder itself is never written to. Callers must finally call
// Done to dispose of the scratch folder.
func (p *Package) Stage(baseconfig string) (string, error) {
	if p.stageDir != "" {
		return p.stageDir, nil
	}
	stage, err := os.MkdirTemp("", "bwinstall-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temporary staging folder, reason: %w", err)
	}
	p.stageDir = stage
	if err := cp.Copy(baseconfig, filepath.Join(stage, "base.xml")); err != nil {
		return "", fmt.Errorf("cannot stage base configuration, reason: %w", err)
	}
	return stage, nil
}

// StagePath returns the path of the named file inside the package's scratch
// folder. Stage must have been called first.
func (p *Package) StagePath(name string) string {
	return filepath.Join(p.stageDir, name)
}

// Done removes the package's scratch folder, if any. It is safe to call Done
// multiple times as well as without any preceding Stage.
func (p *Package) Done() {
	if p.stageDir == "" {
		return
	}
	if err := os.RemoveAll(p.stageDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(fmt.Sprintf("could not remove staging folder %q: %s", p.stageDir, err))
	}
	p.stageDir = ""
}
