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
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// HookEnviron is the set of INSTALL_* environment variables passed to
// prepare and complete hook scripts, describing the installation in
// progress. Hook scripts additionally inherit the full environment of the
// installer process.
type HookEnviron struct {
	PackageDir    string // INSTALL_PACKAGEDIR
	Domain        string // INSTALL_DOMAIN
	User          string // INSTALL_USER
	Credential    string // INSTALL_CREDENTIAL
	AppName       string // INSTALL_APPNAME
	Archive       string // INSTALL_ARCHIVE
	BaseConfig    string // INSTALL_BASECONFIG
	CurrentConfig string // INSTALL_CURRENTCONFIG, empty on fresh installs
	DeployConfig  string // INSTALL_DEPLOYCONFIG
	Update        bool   // INSTALL_UPDATE
	Overwrite     bool   // INSTALL_OVERWRITE
}

// environ returns the full child process environment: the installer's own
// environment with the INSTALL_* contract appended.
func (he *HookEnviron) environ() []string {
	env := os.Environ()
	for name, value := range he.vars() {
		env = append(env, name+"="+value)
	}
	return env
}

// vars returns the INSTALL_* variables as a map, which doubles as the
// variable set for deployment configuration interpolation.
func (he *HookEnviron) vars() map[string]string {
	return map[string]string{
		"INSTALL_PACKAGEDIR":    he.PackageDir,
		"INSTALL_DOMAIN":        he.Domain,
		"INSTALL_USER":          he.User,
		"INSTALL_CREDENTIAL":    he.Credential,
		"INSTALL_APPNAME":       he.AppName,
		"INSTALL_ARCHIVE":       he.Archive,
		"INSTALL_BASECONFIG":    he.BaseConfig,
		"INSTALL_CURRENTCONFIG": he.CurrentConfig,
		"INSTALL_DEPLOYCONFIG":  he.DeployConfig,
		"INSTALL_UPDATE":        boolString(he.Update),
		"INSTALL_OVERWRITE":     boolString(he.Overwrite),
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// runHooks runs the specified hook scripts of a package one after another,
// with the package folder as their working directory and the INSTALL_*
// contract in their environment. The first failing hook aborts; hook output
// is streamed into the log as it appears.
func runHooks(ctx context.Context, kind string, pkg *Package, scripts []string, he *HookEnviron) error {
	for _, script := range scripts {
		path := filepath.Join(pkg.Dir, script)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%s hook %q missing, reason: %w", kind, script, err)
		}
		if info.Mode()&0111 == 0 {
			return fmt.Errorf("%s hook %q is not executable", kind, script)
		}
		// exec resolves a relative program path against cmd.Dir, so the hook
		// path must be absolute before the working directory moves into the
		// package folder.
		abspath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("cannot resolve %s hook %q, reason: %w", kind, script, err)
		}
		log.Info(fmt.Sprintf("🪝  running %s hook %q", kind, script))
		logw := log.StandardLogger().WriterLevel(log.InfoLevel)
		cmd := exec.CommandContext(ctx, abspath)
		cmd.Dir = pkg.Dir
		cmd.Env = he.environ()
		cmd.Stdout = logw
		cmd.Stderr = logw
		err = cmd.Run()
		logw.Close()
		if err != nil {
			return fmt.Errorf("%s hook %q failed: %w", kind, script, err)
		}
	}
	return nil
}
