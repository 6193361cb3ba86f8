package main

import (
	"os"

	"github.com/PiyushChall/CogniSynapseRank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
