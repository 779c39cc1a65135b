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
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Domain identifies the target BW administration domain together with the
// credentials the vendor tools authenticate with.
type Domain struct {
	Name           string // domain name
	User           string // domain administration user
	CredentialPath string // vendor credential properties file
	tempCred       bool   // CredentialPath is ours to remove
}

// NewDomain returns a Domain for the specified domain name and user. If
// credpath is non-empty it must reference an existing vendor credential
// properties file which is then used as-is. Otherwise the password is
// prompted for on the controlling terminal and written into a temporary
// credential file that Done later removes again.
func NewDomain(name, user, credpath string) (*Domain, error) {
	if name == "" {
		return nil, errors.New("no target domain specified")
	}
	if user == "" {
		return nil, errors.New("no domain user specified")
	}
	d := &Domain{
		Name: name,
		User: user,
	}
	if credpath != "" {
		if _, err := os.Stat(credpath); err != nil {
			return nil, fmt.Errorf("cannot use credential file, reason: %w", err)
		}
		d.CredentialPath = credpath
		return d, nil
	}
	password, err := promptPassword(name, user)
	if err != nil {
		return nil, err
	}
	credf, err := os.CreateTemp("", "bwinstall-cred-*.properties")
	if err != nil {
		return nil, fmt.Errorf("cannot create temporary credential file, reason: %w", err)
	}
	d.CredentialPath = credf.Name()
	d.tempCred = true
	_, err = fmt.Fprintf(credf, "user=%s\npw=%s\n", user, password)
	if cerr := credf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		d.Done()
		return nil, fmt.Errorf("cannot write credential file, reason: %w", err)
	}
	if err := os.Chmod(d.CredentialPath, 0600); err != nil {
		d.Done()
		return nil, fmt.Errorf("cannot restrict credential file mode, reason: %w", err)
	}
	return d, nil
}

// promptPassword reads the domain user's password from the controlling
// terminal, without echoing it.
func promptPassword(domain, user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(
			"no credential file specified and stdin is not a terminal to prompt on")
	}
	fmt.Fprintf(os.Stderr, "password for %s@%s: ", user, domain)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("cannot read password, reason: %w", err)
	}
	return string(password), nil
}

// Done removes the temporary credential file, if any. Credential files passed
// in by the caller are left alone. It is safe to call Done multiple times.
func (d *Domain) Done() {
	if !d.tempCred || d.CredentialPath == "" {
		return
	}
	if err := os.Remove(d.CredentialPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(fmt.Sprintf("could not remove credential file %q: %s",
			d.CredentialPath, err))
	}
	d.CredentialPath = ""
}
