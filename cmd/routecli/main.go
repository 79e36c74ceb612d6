// Package main is the entry point for the routecli tool.
package main

import (
	"os"

	"multidrop-route-service/cmd/routecli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
