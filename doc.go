/*
Package bwinstall installs and upgrades TIBCO BusinessWorks (BW) application
packages into a BW administration domain.

bwinstall doesn't talk to the domain itself; all domain operations go through
the vendor-provided AppManage and AppStatusCheck command line tools found
beneath $TIBCO_TRA_HOME. What bwinstall adds is the sequencing around them:
check whether an application is already installed, export and merge the
deployment configuration, run user-supplied hook scripts, upload the
enterprise archive, optionally deploy it, and clean up after itself whether
the installation succeeded or not.

All that bwinstall needs is an installation package folder with the following
structure:
  - package-info (YAML metadata: appname, archive, config, prepare, complete)
  - $APPNAME.ear (or whatever the archive key names instead)
  - envconfig/<domain>.xml (deployment configuration per target domain)
  - envconfig/default.xml (fallback deployment configuration)
  - hooks/... (any prepare/complete scripts listed in package-info)

Hook scripts run with the package folder as their working directory and see
the full set of INSTALL_* environment variables describing the installation
in progress, see [HookEnviron].
*/
package bwinstall
