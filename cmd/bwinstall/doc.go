/*
bwinstall installs and upgrades BW application packages into a BW domain.

# Usage

	bwinstall [flags] [package...]

Without any package folder arguments, $TIBCO_APPLICATION is installed if
set, otherwise the current working directory.

# Flags

	    --credential string   vendor credential properties file; prompts for a password when unset
	-d, --deploy              deploy the application after uploading it
	    --domain string       target BW domain, defaults to $TIBCO_DOMAIN
	-h, --help                help for bwinstall
	-o, --overwrite           discard the currently deployed configuration when upgrading
	-t, --trace               trace logging
	    --user string         domain administration user, defaults to $TIBCO_USER
	-v, --verbose             verbose logging, including vendor tool output
	    --version             version for bwinstall

# Exit Codes

	0   success
	1   generic or usage failure
	2   domain status check failure
*/
package main
