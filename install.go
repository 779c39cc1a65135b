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
	"strings"

	log "github.com/sirupsen/logrus"
)

// Installer installs or upgrades installation packages into a single BW
// domain. Installations run strictly sequentially; the domain is assumed to
// be under exclusive control of this one operator for the duration.
type Installer struct {
	Tool      *Tool   // the vendor tools to drive
	Domain    *Domain // the target domain
	Overwrite bool    // discard the currently deployed configuration on upgrade
	Deploy    bool    // deploy the application after uploading it
}

// Install installs (or upgrades) the installation package in the specified
// folder, running all steps in order: status check, configuration
// selection/export/merge, prepare hooks, upload, optional deploy, complete
// hooks. Temporary resources are cleaned up on success and failure alike; a
// failure banner is logged if the installation did not reach completion.
func (inst *Installer) Install(ctx context.Context, pkgdir string) (err error) {
	log.Info(fmt.Sprintf("🏗  installing package %q into domain %q",
		pkgdir, inst.Domain.Name))
	defer func() {
		if err != nil {
			log.Error(fmt.Sprintf("💥  installation of package %q failed: %s",
				pkgdir, err))
		}
	}()

	pkg, err := LoadPackage(pkgdir)
	if err != nil {
		return err
	}
	defer pkg.Done()
	app := pkg.Info.AppName

	baseconfig, err := pkg.ConfigForDomain(inst.Domain.Name)
	if err != nil {
		return err
	}

	installed, err := inst.Tool.Status(ctx, inst.Domain, app)
	if err != nil {
		return err
	}
	if installed {
		log.Info(fmt.Sprintf("♻  app %q already installed, upgrading", app))
	}

	if _, err := pkg.Stage(baseconfig); err != nil {
		return err
	}
	he := &HookEnviron{
		PackageDir:   pkg.Dir,
		Domain:       inst.Domain.Name,
		User:         inst.Domain.User,
		Credential:   inst.Domain.CredentialPath,
		AppName:      app,
		Archive:      pkg.ArchivePath,
		BaseConfig:   pkg.StagePath("base.xml"),
		DeployConfig: pkg.StagePath("deploy.xml"),
		Update:       installed,
		Overwrite:    inst.Overwrite,
	}

	deploy, err := inst.assembleConfig(ctx, pkg, he)
	if err != nil {
		return err
	}
	if err := deploy.WriteFile(he.DeployConfig); err != nil {
		return err
	}

	if err := runHooks(ctx, "prepare", pkg, pkg.Info.Prepare, he); err != nil {
		return err
	}
	if err := inst.Tool.Upload(ctx, inst.Domain, app, pkg.ArchivePath, he.DeployConfig); err != nil {
		return err
	}
	if inst.Deploy {
		if err := inst.Tool.Deploy(ctx, inst.Domain, app); err != nil {
			return err
		}
	}
	if err := runHooks(ctx, "complete", pkg, pkg.Info.Complete, he); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("✅  ...app %q successfully installed into domain %q",
		app, inst.Domain.Name))
	return nil
}

// assembleConfig produces the deployment configuration to upload: on a fresh
// install (or with Overwrite) the package's interpolated base configuration;
// on an upgrade the exported current configuration with the package's
// bindings merged on top.
func (inst *Installer) assembleConfig(
	ctx context.Context,
	pkg *Package,
	he *HookEnviron,
) (*DeployConfig, error) {
	base, err := ReadDeployConfig(he.BaseConfig)
	if err != nil {
		return nil, err
	}
	if err := base.Interpolate(interpolationVars(he)); err != nil {
		return nil, err
	}
	if !he.Update || he.Overwrite {
		return base, nil
	}
	current := pkg.StagePath("current.xml")
	if err := inst.Tool.ExportConfig(ctx, inst.Domain, he.AppName, current); err != nil {
		return nil, err
	}
	he.CurrentConfig = current
	config, err := ReadDeployConfig(current)
	if err != nil {
		return nil, err
	}
	log.Info("🧬  merging package configuration into current configuration")
	config.Merge(base)
	return config, nil
}

// interpolationVars returns the variables available to deployment
// configuration interpolation: the process environment with the INSTALL_*
// contract on top.
func interpolationVars(he *HookEnviron) map[string]string {
	vars := map[string]string{}
	for _, envvar := range os.Environ() {
		if name, value, ok := strings.Cut(envvar, "="); ok {
			vars[name] = value
		}
	}
	for name, value := range he.vars() {
		vars[name] = value
	}
	return vars
}
