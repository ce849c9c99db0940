// Command caprender converts a PetaBencana GeoJSON document into a CAP Atom
// feed on stdout.
package main

import (
	"os"
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
