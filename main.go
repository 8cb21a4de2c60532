package main

import "github.com/agentic-research/fextract/cmd"

func main() {
	cmd.Execute()
}
