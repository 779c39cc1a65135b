/*
Package interpolate substitutes variable references in deployment
configuration values and scaffolding templates.

The syntax is Bash-like, in both “unbraced” and “braced” forms:

	$FOO
	${FOO}

Braced references additionally support default and error fallbacks:

	${FOO:-default}   default if FOO is unset or empty
	${FOO-default}    default only if FOO is unset
	${FOO:?message}   error containing message if FOO is unset or empty
	${FOO?message}    error containing message only if FOO is unset

A literal dollar sign is written as “$$”. Unlike shell parameter expansion,
fallback values are taken literally and not expanded any further: deployment
variable bindings are flat strings, so there is no need for nesting.
*/
package interpolate
