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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// ErrStatusCheck indicates that the domain application status check itself
// failed, as opposed to merely reporting the application as not installed.
// Callers are expected to map this error onto its own process exit code.
var ErrStatusCheck = errors.New("domain status check failed")

// Tool drives the vendor-provided BW command line tools. It never interprets
// domain state on its own; everything it knows it learned from AppManage and
// AppStatusCheck exit codes and output.
type Tool struct {
	AppManage      string // path of the AppManage executable
	AppStatusCheck string // path of the AppStatusCheck executable
}

// LocateTool finds the vendor tools, looking first into $TIBCO_TRA_HOME/bin,
// then probing the TRA installations beneath $TIBCO_HOME, and finally
// falling back to $PATH.
func LocateTool() (*Tool, error) {
	if trahome := os.Getenv("TIBCO_TRA_HOME"); trahome != "" {
		return toolInBin(filepath.Join(trahome, "bin"))
	}
	if tibhome := os.Getenv("TIBCO_HOME"); tibhome != "" {
		bins, err := filepath.Glob(filepath.Join(tibhome, "tra", "*", "bin"))
		if err == nil && len(bins) > 0 {
			// multiple TRA versions installed: take the highest one.
			slices.Sort(bins)
			return toolInBin(bins[len(bins)-1])
		}
	}
	appmanage, err := exec.LookPath("AppManage")
	if err != nil {
		return nil, errors.New(
			"cannot locate AppManage: set TIBCO_TRA_HOME or TIBCO_HOME, or add it to PATH")
	}
	return toolInBin(filepath.Dir(appmanage))
}

// toolInBin returns a Tool referencing the vendor executables in the
// specified folder, making sure they're actually present.
func toolInBin(bin string) (*Tool, error) {
	t := &Tool{
		AppManage:      filepath.Join(bin, "AppManage"),
		AppStatusCheck: filepath.Join(bin, "AppStatusCheck"),
	}
	for _, path := range []string{t.AppManage, t.AppStatusCheck} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("vendor tool missing, reason: %w", err)
		}
	}
	log.Debug(fmt.Sprintf("using vendor tools in %q", bin))
	return t, nil
}

// Status asks AppStatusCheck whether the named application is already
// installed in the domain. A failing status check returns an error wrapping
// ErrStatusCheck.
func (t *Tool) Status(ctx context.Context, d *Domain, app string) (bool, error) {
	log.Info(fmt.Sprintf("🔎  checking status of app %q in domain %q", app, d.Name))
	out, err := t.run(ctx, t.AppStatusCheck,
		"-domain", d.Name,
		"-user", d.User,
		"-cred", d.CredentialPath,
		"-app", app)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStatusCheck, err)
	}
	// AppStatusCheck reports one line per known application instance, with
	// the application name in the first column.
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == app {
			return true, nil
		}
	}
	return false, nil
}

// ExportConfig exports the application's current deployment configuration
// from the domain into the specified file.
func (t *Tool) ExportConfig(ctx context.Context, d *Domain, app string, outfile string) error {
	log.Info(fmt.Sprintf("📤  exporting current deployment configuration of %q", app))
	_, err := t.run(ctx, t.AppManage,
		"-export",
		"-app", app,
		"-domain", d.Name,
		"-user", d.User,
		"-cred", d.CredentialPath,
		"-out", outfile)
	if err != nil {
		return fmt.Errorf("cannot export deployment configuration, reason: %w", err)
	}
	return nil
}

// Upload uploads the enterprise archive together with its deployment
// configuration into the domain, without deploying it yet.
func (t *Tool) Upload(ctx context.Context, d *Domain, app string, ear string, deployconfig string) error {
	log.Info(fmt.Sprintf("🚚  uploading archive %q as app %q", filepath.Base(ear), app))
	_, err := t.run(ctx, t.AppManage,
		"-upload",
		"-app", app,
		"-ear", ear,
		"-deployconfig", deployconfig,
		"-domain", d.Name,
		"-user", d.User,
		"-cred", d.CredentialPath)
	if err != nil {
		return fmt.Errorf("cannot upload archive, reason: %w", err)
	}
	return nil
}

// Deploy deploys the previously uploaded application inside the domain.
func (t *Tool) Deploy(ctx context.Context, d *Domain, app string) error {
	log.Info(fmt.Sprintf("🚀  deploying app %q", app))
	_, err := t.run(ctx, t.AppManage,
		"-deploy",
		"-app", app,
		"-domain", d.Name,
		"-user", d.User,
		"-cred", d.CredentialPath)
	if err != nil {
		return fmt.Errorf("cannot deploy app, reason: %w", err)
	}
	return nil
}

// run executes a single vendor tool invocation, streaming its combined
// output into the debug log while also capturing it for error reporting. Any
// non-zero exit aborts with the tool's trailing output attached.
func (t *Tool) run(ctx context.Context, tool string, args ...string) (string, error) {
	log.Debug(fmt.Sprintf("running %s %s", tool, strings.Join(args, " ")))
	logw := log.StandardLogger().WriterLevel(log.DebugLevel)
	defer logw.Close()
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = io.MultiWriter(&out, logw)
	cmd.Stderr = io.MultiWriter(&out, logw)
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s failed: %w: %s",
			filepath.Base(tool), err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
