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

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/tibkit/bwinstall"
)

const (
	overwriteFlag  = "overwrite"
	deployFlag     = "deploy"
	verboseFlag    = "verbose"
	traceFlag      = "trace"
	domainFlag     = "domain"
	userFlag       = "user"
	credentialFlag = "credential"
)

// envFilename is an optional env-format file in the current working
// directory supplying TIBCO_* defaults.
const envFilename = ".bwinstallrc"

func buildInfo(info *debug.BuildInfo, key string) string {
	idx := slices.IndexFunc(info.Settings,
		func(setting debug.BuildSetting) bool {
			return setting.Key == key
		})
	if idx < 0 {
		return ""
	}
	return info.Settings[idx].Value
}

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:   "bwinstall [flags] [package...]",
		Short: "bwinstall installs and upgrades BW application packages into a BW domain",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose, _ := rootCmd.Flags().GetBool(verboseFlag); verbose {
				log.SetLevel(log.DebugLevel)
			}
			if trace, _ := rootCmd.Flags().GetBool(traceFlag); trace {
				log.SetLevel(log.TraceLevel)
			}
			log.Info("🗩  bwinstall ... installs BW application packages")
			log.Info(fmt.Sprintf("   %s", rootCmd.Version))

			if _, err := os.Stat(envFilename); err == nil {
				if err := godotenv.Load(envFilename); err != nil {
					return fmt.Errorf("cannot load %s, reason: %w", envFilename, err)
				}
				log.Debug(fmt.Sprintf("loaded environment defaults from %s", envFilename))
			}

			domain, _ := rootCmd.Flags().GetString(domainFlag)
			if domain == "" {
				domain = os.Getenv("TIBCO_DOMAIN")
			}
			user, _ := rootCmd.Flags().GetString(userFlag)
			if user == "" {
				user = os.Getenv("TIBCO_USER")
			}
			credential, _ := rootCmd.Flags().GetString(credentialFlag)

			packages := args
			if len(packages) == 0 {
				if app := os.Getenv("TIBCO_APPLICATION"); app != "" {
					packages = []string{app}
				} else {
					packages = []string{"."}
				}
			}

			tool, err := bwinstall.LocateTool()
			if err != nil {
				return err
			}
			dom, err := bwinstall.NewDomain(domain, user, credential)
			if err != nil {
				return err
			}
			defer dom.Done()

			overwrite, _ := rootCmd.Flags().GetBool(overwriteFlag)
			deploy, _ := rootCmd.Flags().GetBool(deployFlag)
			installer := &bwinstall.Installer{
				Tool:      tool,
				Domain:    dom,
				Overwrite: overwrite,
				Deploy:    deploy,
			}
			for _, pkgdir := range packages {
				if err := installer.Install(cmd.Context(), pkgdir); err != nil {
					return err
				}
			}
			return nil
		},
	}
	rootCmd.Flags().BoolP(overwriteFlag, "o", false,
		"discard the currently deployed configuration when upgrading")
	rootCmd.Flags().BoolP(deployFlag, "d", false,
		"deploy the application after uploading it")
	rootCmd.Flags().BoolP(verboseFlag, "v", false,
		"verbose logging, including vendor tool output")
	rootCmd.Flags().BoolP(traceFlag, "t", false,
		"trace logging")
	rootCmd.Flags().String(domainFlag, "",
		"target BW domain, defaults to $TIBCO_DOMAIN")
	rootCmd.Flags().String(userFlag, "",
		"domain administration user, defaults to $TIBCO_USER")
	rootCmd.Flags().String(credentialFlag, "",
		"vendor credential properties file; prompts for a password when unset")

	rootCmd.Version = "unreleased"
	if info, biok := debug.ReadBuildInfo(); biok {
		commit := buildInfo(info, "vcs.revision")
		if commit != "" {
			modified := ""
			if buildInfo(info, "vcs.modified") == "true" {
				modified = " (modified)"
			}
			rootCmd.Version = fmt.Sprintf("commit %s%s", commit[:8], modified)
		} else if modver := info.Main.Version; modver != "" {
			rootCmd.Version = modver
		}
	}

	return rootCmd
}

// exitCode maps an installation error onto the tool's process exit code: 2
// for a failed domain status check, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, bwinstall.ErrStatusCheck) {
		return 2
	}
	return 1
}
