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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("vendor tool wrapping", func() {

	BeforeEach(func() {
		GrabLog(logrus.DebugLevel)
	})

	Context("locating the tools", func() {

		BeforeEach(func() {
			for _, name := range []string{"TIBCO_TRA_HOME", "TIBCO_HOME"} {
				name := name
				old, had := os.LookupEnv(name)
				os.Unsetenv(name)
				DeferCleanup(func() {
					if had {
						os.Setenv(name, old)
					}
				})
			}
		})

		It("finds the tools beneath TIBCO_TRA_HOME", func() {
			setenv("TIBCO_TRA_HOME", Successful(filepath.Abs("testdata")))
			tool := Successful(LocateTool())
			Expect(tool.AppManage).To(BeARegularFile())
			Expect(tool.AppStatusCheck).To(BeARegularFile())
		})

		It("reports missing tools beneath TIBCO_TRA_HOME", func() {
			setenv("TIBCO_TRA_HOME", "testdata/goodpkg")
			Expect(LocateTool()).Error().To(MatchError(
				ContainSubstring("vendor tool missing")))
		})

		It("probes the newest TRA installation beneath TIBCO_HOME", func() {
			tibhome := GinkgoT().TempDir()
			for _, version := range []string{"5.10", "5.11"} {
				bin := filepath.Join(tibhome, "tra", version, "bin")
				Expect(os.MkdirAll(bin, 0755)).To(Succeed())
				for _, name := range []string{"AppManage", "AppStatusCheck"} {
					Expect(os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755)).
						To(Succeed())
				}
			}
			setenv("TIBCO_HOME", tibhome)
			tool := Successful(LocateTool())
			Expect(tool.AppManage).To(Equal(
				filepath.Join(tibhome, "tra", "5.11", "bin", "AppManage")))
		})

		It("reports when the tools are nowhere to be found", func() {
			setenv("PATH", GinkgoT().TempDir())
			Expect(LocateTool()).Error().To(MatchError(
				ContainSubstring("cannot locate AppManage")))
		})

	})

	Context("domain status", func() {

		It("detects an installed app", func() {
			toolLog()
			setenv("STATUSCHECK_APPS", "Hellorld Running")
			Expect(testTool().Status(context.Background(), testDomain("prod"), "Hellorld")).
				To(BeTrue())
		})

		It("detects a not yet installed app", func() {
			toolLog()
			setenv("STATUSCHECK_APPS", "OtherApp Running")
			Expect(testTool().Status(context.Background(), testDomain("prod"), "Hellorld")).
				To(BeFalse())
		})

		It("reports a failing status check", func() {
			toolLog()
			setenv("STATUSCHECK_FAIL", "1")
			Expect(testTool().Status(context.Background(), testDomain("prod"), "Hellorld")).
				Error().To(MatchError(ErrStatusCheck))
		})

	})

	It("exports the current deployment configuration", func() {
		readLog := toolLog()
		setenv("EXPORT_SOURCE", Successful(filepath.Abs("testdata/config/current.xml")))
		outfile := filepath.Join(GinkgoT().TempDir(), "current.xml")
		Expect(testTool().ExportConfig(
			context.Background(), testDomain("prod"), "Hellorld", outfile)).To(Succeed())
		Expect(outfile).To(BeARegularFile())
		Expect(readLog()).To(ContainSubstring("-export -app Hellorld -domain prod"))
	})

	It("uploads and deploys", func() {
		readLog := toolLog()
		tool := testTool()
		d := testDomain("prod")
		Expect(tool.Upload(context.Background(), d, "Hellorld",
			"testdata/goodpkg/Hellorld.ear", "deploy.xml")).To(Succeed())
		Expect(tool.Deploy(context.Background(), d, "Hellorld")).To(Succeed())
		log := readLog()
		Expect(log).To(ContainSubstring(
			"-upload -app Hellorld -ear testdata/goodpkg/Hellorld.ear -deployconfig deploy.xml"))
		Expect(log).To(ContainSubstring("-deploy -app Hellorld -domain prod"))
	})

	It("attaches tool output to failures", func() {
		toolLog()
		setenv("APPMANAGE_FAIL", "1")
		Expect(testTool().Deploy(context.Background(), testDomain("prod"), "Hellorld")).
			To(MatchError(ContainSubstring("simulated AppManage failure")))
	})

})
