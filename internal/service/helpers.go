package service

import "github.com/alexanderramin/ember/internal/app"

// kindOrUnknown labels errors outside the app taxonomy as INTERNAL.
func kindOrUnknown(err error) app.ErrorKind {
	if k := app.KindOf(err); k != "" {
		return k
	}
	return "INTERNAL"
}
