package main

import (
	"os"

	"vitalsfirst/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
