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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tibkit/bwinstall"
)

const (
	appnameFlag  = "appname"
	templateFlag = "template"
	verboseFlag  = "verbose"
)

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:   "bwpackage [flags] package-dir",
		Short: "bwpackage scaffolds a new BW installation package folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose, _ := rootCmd.Flags().GetBool(verboseFlag); verbose {
				log.SetLevel(log.DebugLevel)
			}
			appname, _ := rootCmd.Flags().GetString(appnameFlag)
			template, _ := rootCmd.Flags().GetString(templateFlag)
			return bwinstall.Scaffold(args[0], bwinstall.ScaffoldOptions{
				AppName:     appname,
				TemplateDir: template,
			})
		},
	}
	rootCmd.Flags().StringP(appnameFlag, "a", "",
		"mandatory: name of the BW application the package installs")
	rootCmd.MarkFlagRequired(appnameFlag)

	rootCmd.Flags().String(templateFlag, "",
		"folder whose contents seed the new package")

	rootCmd.Flags().BoolP(verboseFlag, "v", false,
		"verbose logging")

	return rootCmd
}
