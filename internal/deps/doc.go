// Package deps checks the availability of external binaries the conversion
// pipeline shells out to. Checks resolve through PATH lookup only and never
// spawn a subprocess, so they are cheap enough to run on every readiness query.
package deps
