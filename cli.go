//go:build cli
// +build cli

package main

import (
	_ "gaugetrack.GO/custom"

	"gaugetrack.GO/cmd"
	"gaugetrack.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
