// Package preflight provides readiness checks for the filesystem paths that
// subsyncarr depends on.
//
// `subsyncarr deps` prints every check and `subsyncarr serve` logs the
// failures at startup. A failed check never blocks a run: a missing scan root
// surfaces as a scan error on the run that names it.
package preflight
