package main

import "github.com/pfrederiksen/vote-projector/internal/cli"

func main() {
	cli.Execute()
}
