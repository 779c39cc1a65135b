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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("scaffolding packages", func() {

	BeforeEach(func() {
		GrabLog(logrus.InfoLevel)
	})

	It("needs an application name", func() {
		Expect(Scaffold(GinkgoT().TempDir(), ScaffoldOptions{})).To(MatchError(
			ContainSubstring("needs an application name")))
	})

	It("refuses to scaffold over an existing package", func() {
		Expect(Scaffold("testdata/goodpkg", ScaffoldOptions{AppName: "Hellorld"})).
			To(MatchError(ContainSubstring("already contains an installation package")))
	})

	It("scaffolds a fresh package folder", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "mypkg")
		Expect(Scaffold(dir, ScaffoldOptions{AppName: "MyApp"})).To(Succeed())

		info := string(Successful(os.ReadFile(filepath.Join(dir, InfoFilename))))
		Expect(info).To(ContainSubstring("appname: MyApp"))
		Expect(info).To(ContainSubstring("archive: MyApp.ear"))

		config := string(Successful(os.ReadFile(
			filepath.Join(dir, "envconfig", "default.xml"))))
		Expect(config).To(ContainSubstring(`<application name="MyApp">`))
		// escaped references stay literal for later installation-time use:
		Expect(config).To(ContainSubstring("${INSTALL_DOMAIN}"))

		for _, hook := range []string{"prepare.sh", "complete.sh"} {
			stat := Successful(os.Stat(filepath.Join(dir, "hooks", hook)))
			Expect(stat.Mode() & 0111).NotTo(BeZero(), hook+" must be executable")
		}

		// the scaffolded package must itself load cleanly (modulo the still
		// missing archive):
		Expect(LoadPackage(dir)).Error().To(MatchError(
			ContainSubstring("archive")))
	})

	It("lets a template folder seed the package", func() {
		template := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(template, "hooks"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(template, "hooks", "prepare.sh"),
			[]byte("#!/bin/sh\necho custom\n"), 0755)).To(Succeed())

		dir := filepath.Join(GinkgoT().TempDir(), "mypkg")
		Expect(Scaffold(dir, ScaffoldOptions{
			AppName:     "MyApp",
			TemplateDir: template,
		})).To(Succeed())

		// the template's hook wins over the embedded skeleton one:
		Expect(string(Successful(os.ReadFile(
			filepath.Join(dir, "hooks", "prepare.sh"))))).To(ContainSubstring("custom"))
		// the skeleton still fills in what the template left out:
		Expect(filepath.Join(dir, InfoFilename)).To(BeARegularFile())
		Expect(filepath.Join(dir, "hooks", "complete.sh")).To(BeARegularFile())
	})

	It("reports an unusable template folder", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "mypkg")
		Expect(Scaffold(dir, ScaffoldOptions{
			AppName:     "MyApp",
			TemplateDir: "testdata/nothing-nada-nil",
		})).To(MatchError(ContainSubstring("cannot copy template folder")))
	})

})
