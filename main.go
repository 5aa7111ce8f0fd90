// Package main is the entry point for the unityloc CLI.
package main

import "github.com/HanFengRuYue/UnityLocalizationToolkit/cmd"

func main() {
	cmd.Execute()
}
