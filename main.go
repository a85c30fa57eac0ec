// Package main is the entry point for the scoutmetrics CLI, which loads
// G-League statistics and computes scouting metrics over them.
package main

import "github.com/pable/gleague-scout/cmd"

func main() {
	cmd.Execute()
}
