// Command pricematch reconciles supplier price lists against a catalog
// offline, without a database or server.
package main

import (
	"github.com/JonMunkholm/pricematch/cmd/pricematch/cmd"
)

// Version information populated at build time.
var version = "dev"

func main() {
	cmd.Execute(version)
}
