// Command fitctl logs and browses sit-up and push-up entries against a
// fittracker service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
