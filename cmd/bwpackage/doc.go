/*
bwpackage scaffolds a new BW installation package folder.

# Usage

	bwpackage [flags] package-dir

# Flags

	-a, --appname string    mandatory: name of the BW application the package installs
	-h, --help              help for bwpackage
	    --template string   folder whose contents seed the new package
	-v, --verbose           verbose logging
*/
package main
