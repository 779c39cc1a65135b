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

var _ = Describe("deployment configurations", func() {

	BeforeEach(func() {
		GrabLog(logrus.DebugLevel)
	})

	It("rejects malformed documents", func() {
		Expect(ReadDeployConfig("testdata/config/malformed.xml")).Error().To(
			MatchError(ContainSubstring("cannot read deployment configuration")))
		Expect(ReadDeployConfig("testdata/config/rootless.xml")).Error().To(
			MatchError(ContainSubstring("lacks a document root")))
		Expect(ReadDeployConfig("testdata/nothing-nada-nil.xml")).Error().To(
			MatchError(ContainSubstring("cannot read deployment configuration")))
	})

	It("reports the bindings of a document", func() {
		config := Successful(ReadDeployConfig("testdata/config/current.xml"))
		Expect(config.Bindings()).To(And(
			HaveKeyWithValue("Deployment/Endpoint", "https://current.example.com"),
			HaveKeyWithValue("Deployment/Operator", "tuned-by-hand"),
			HaveKeyWithValue("Deployment/MaxJobs", "8")))
	})

	Context("interpolating", func() {

		It("substitutes variable references in binding values", func() {
			config := Successful(ReadDeployConfig("testdata/config/package.xml"))
			Expect(config.Interpolate(map[string]string{
				"RELEASE": "1.2.3",
			})).To(Succeed())
			Expect(config.Bindings()).To(
				HaveKeyWithValue("Deployment/Release", "1.2.3"))
		})

		It("falls back to defaults for unset variables", func() {
			config := Successful(ReadDeployConfig("testdata/config/package.xml"))
			Expect(config.Interpolate(nil)).To(Succeed())
			Expect(config.Bindings()).To(
				HaveKeyWithValue("Deployment/Release", "dev"))
		})

		It("reports broken variable references including the binding name", func() {
			broken := filepath.Join(GinkgoT().TempDir(), "broken.xml")
			Expect(os.WriteFile(broken, []byte(`<application>
	<NVPairs name="Global Variables">
		<NameValuePair>
			<name>Broken/Binding</name>
			<value>${OOPS</value>
		</NameValuePair>
	</NVPairs>
</application>`), 0644)).To(Succeed())
			config := Successful(ReadDeployConfig(broken))
			Expect(config.Interpolate(nil)).To(MatchError(SatisfyAll(
				ContainSubstring("Broken/Binding"),
				ContainSubstring("unterminated ${"))))
		})

	})

	Context("merging", func() {

		It("overlays package bindings while keeping current-only bindings", func() {
			current := Successful(ReadDeployConfig("testdata/config/current.xml"))
			pkg := Successful(ReadDeployConfig("testdata/config/package.xml"))
			current.Merge(pkg)

			Expect(current.Bindings()).To(And(
				// pinned by the package:
				HaveKeyWithValue("Deployment/Endpoint", "https://pinned.example.com"),
				// new from the package, fallback value untouched:
				HaveKeyWithValue("Deployment/Release", "${RELEASE:-dev}"),
				// operator-tuned values survive an upgrade:
				HaveKeyWithValue("Deployment/Operator", "tuned-by-hand"),
				HaveKeyWithValue("Deployment/MaxJobs", "8"),
				// sections only known to the package get added wholesale:
				HaveKeyWithValue("Trace", "false")))
		})

	})

	It("round-trips through a written file", func() {
		config := Successful(ReadDeployConfig("testdata/config/current.xml"))
		outfile := filepath.Join(GinkgoT().TempDir(), "deploy.xml")
		Expect(config.WriteFile(outfile)).To(Succeed())
		reread := Successful(ReadDeployConfig(outfile))
		Expect(reread.Bindings()).To(Equal(config.Bindings()))
	})

	It("reports write failures", func() {
		config := Successful(ReadDeployConfig("testdata/config/current.xml"))
		Expect(config.Write(&badWriter{})).To(MatchError(
			ContainSubstring("cannot write deployment configuration")))
		Expect(config.WriteFile("/nothing-nada-nil/deploy.xml")).To(MatchError(
			ContainSubstring("cannot write deployment configuration")))
	})

})
