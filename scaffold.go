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
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"

	"github.com/tibkit/bwinstall/interpolate"
)

//go:embed templates
var templateFS embed.FS

// ScaffoldOptions control scaffolding of a new installation package folder.
type ScaffoldOptions struct {
	// AppName is the name of the BW application the new package will
	// install; mandatory.
	AppName string
	// TemplateDir optionally names a folder whose contents seed the new
	// package before the embedded skeleton fills in whatever is still
	// missing.
	TemplateDir string
}

// Scaffold creates a new installation package folder with a package-info, a
// default deployment configuration, and example hook scripts. It refuses to
// scaffold over an existing installation package.
func Scaffold(dir string, opts ScaffoldOptions) error {
	if opts.AppName == "" {
		return errors.New("scaffolding needs an application name")
	}
	if _, err := os.Stat(filepath.Join(dir, InfoFilename)); err == nil {
		return fmt.Errorf("%q already contains an installation package", dir)
	}
	log.Info(fmt.Sprintf("🧰  scaffolding installation package for app %q in %q",
		opts.AppName, dir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create package folder, reason: %w", err)
	}
	if opts.TemplateDir != "" {
		if err := cp.Copy(opts.TemplateDir, dir); err != nil {
			return fmt.Errorf("cannot copy template folder %q, reason: %w",
				opts.TemplateDir, err)
		}
	}
	vars := map[string]string{
		"APPNAME": opts.AppName,
	}
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel("templates", path)
		target := filepath.Join(dir, rel)
		if d.IsDir() {
			if path == "templates" {
				return nil
			}
			return os.MkdirAll(target, 0755)
		}
		if _, err := os.Stat(target); err == nil {
			// seeded from the template folder, leave it alone.
			return nil
		}
		return writeSkeletonFile(path, target, vars)
	})
	if err != nil {
		return fmt.Errorf("cannot scaffold package, reason: %w", err)
	}
	log.Info(fmt.Sprintf("✅  ...installation package %q successfully scaffolded", dir))
	return nil
}

// writeSkeletonFile writes a single embedded skeleton file to its target
// path. Metadata and configuration documents get their ${APPNAME} references
// substituted; hook scripts are written verbatim (their $VARs belong to the
// shell) and with the execute bits set.
func writeSkeletonFile(path string, target string, vars map[string]string) error {
	content, err := templateFS.ReadFile(path)
	if err != nil {
		return err
	}
	mode := os.FileMode(0644)
	switch {
	case strings.HasSuffix(path, ".sh"):
		mode = 0755
	case filepath.Base(path) == InfoFilename || strings.HasSuffix(path, ".xml"):
		text, err := interpolate.String(string(content), vars)
		if err != nil {
			return err
		}
		content = []byte(text)
	}
	log.Info(fmt.Sprintf("   📄  creating %s", target))
	return os.WriteFile(target, content, mode)
}
