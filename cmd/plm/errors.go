package main

import "github.com/ruminaider/plm/internal/errs"

// errKind and errRemediation are thin wrappers so main.go doesn't import
// internal/errs just for two one-line calls.
func errKind(err error) (errs.Kind, bool) {
	k := errs.KindOf(err)
	return k, k != ""
}

func errRemediation(k errs.Kind) string {
	return errs.Remediation(k)
}
