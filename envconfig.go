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
	"fmt"
	"io"

	"github.com/beevik/etree"
	log "github.com/sirupsen/logrus"

	"github.com/tibkit/bwinstall/interpolate"
)

// DeployConfig is a BW deployment configuration document. The document is
// treated as an opaque XML tree except for its name/value pair sections
// (“NVPairs”), which is all that selecting and merging configurations needs
// to understand.
type DeployConfig struct {
	doc *etree.Document
}

// ReadDeployConfig reads a deployment configuration document from the
// specified file.
func ReadDeployConfig(path string) (*DeployConfig, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("cannot read deployment configuration %q, reason: %w",
			path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("deployment configuration %q lacks a document root", path)
	}
	return &DeployConfig{doc: doc}, nil
}

// Interpolate substitutes $VAR and ${VAR} references in all name/value pair
// values of this configuration with values from the specified variables.
func (c *DeployConfig) Interpolate(vars map[string]string) error {
	for _, pair := range c.pairs() {
		value := pair.SelectElement("value")
		if value == nil {
			continue
		}
		text, err := interpolate.String(value.Text(), vars)
		if err != nil {
			name := ""
			if nameEl := pair.SelectElement("name"); nameEl != nil {
				name = nameEl.Text()
			}
			return fmt.Errorf("cannot interpolate binding %q, reason: %w", name, err)
		}
		value.SetText(text)
	}
	return nil
}

// Merge overlays the name/value pair bindings of the specified overlay
// configuration onto this configuration: bindings present in the overlay
// replace same-named bindings here or get inserted, while bindings only
// present here survive untouched. This way an upgrade keeps operator-tuned
// repository values unless the package explicitly pins them.
func (c *DeployConfig) Merge(overlay *DeployConfig) {
	for _, overlaySection := range overlay.doc.FindElements("//NVPairs") {
		sectionName := overlaySection.SelectAttrValue("name", "")
		section := c.section(sectionName)
		for _, overlayPair := range overlaySection.ChildElements() {
			nameEl := overlayPair.SelectElement("name")
			if nameEl == nil {
				continue
			}
			pair := findPair(section, overlayPair.Tag, nameEl.Text())
			if pair == nil {
				section.AddChild(overlayPair.Copy())
				log.Debug(fmt.Sprintf("merge: adding binding %q", nameEl.Text()))
				continue
			}
			overlayValue := overlayPair.SelectElement("value")
			value := pair.SelectElement("value")
			if overlayValue == nil || value == nil {
				continue
			}
			value.SetText(overlayValue.Text())
			log.Debug(fmt.Sprintf("merge: overriding binding %q", nameEl.Text()))
		}
	}
}

// Bindings returns all name/value pair bindings of this configuration as a
// flat name-to-value map.
func (c *DeployConfig) Bindings() map[string]string {
	bindings := map[string]string{}
	for _, pair := range c.pairs() {
		name := pair.SelectElement("name")
		value := pair.SelectElement("value")
		if name == nil || value == nil {
			continue
		}
		bindings[name.Text()] = value.Text()
	}
	return bindings
}

// WriteFile writes this configuration document to the specified file.
func (c *DeployConfig) WriteFile(path string) error {
	c.doc.Indent(4)
	if err := c.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("cannot write deployment configuration %q, reason: %w",
			path, err)
	}
	return nil
}

// Write writes this configuration document to the specified io.Writer.
func (c *DeployConfig) Write(w io.Writer) error {
	c.doc.Indent(4)
	if _, err := c.doc.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write deployment configuration, reason: %w", err)
	}
	return nil
}

// pairs returns all name/value pair elements across all NVPairs sections.
func (c *DeployConfig) pairs() []*etree.Element {
	var pairs []*etree.Element
	for _, section := range c.doc.FindElements("//NVPairs") {
		pairs = append(pairs, section.ChildElements()...)
	}
	return pairs
}

// section returns the NVPairs section with the specified name attribute,
// creating it beneath the document root first if necessary.
func (c *DeployConfig) section(name string) *etree.Element {
	for _, section := range c.doc.FindElements("//NVPairs") {
		if section.SelectAttrValue("name", "") == name {
			return section
		}
	}
	section := c.doc.Root().CreateElement("NVPairs")
	section.CreateAttr("name", name)
	return section
}

// findPair returns the pair element with the specified tag and name child
// text inside the section, or nil.
func findPair(section *etree.Element, tag string, name string) *etree.Element {
	for _, pair := range section.ChildElements() {
		if pair.Tag != tag {
			continue
		}
		if nameEl := pair.SelectElement("name"); nameEl != nil && nameEl.Text() == name {
			return pair
		}
	}
	return nil
}
