package main

import (
	"os"

	"github.com/dpshade/llm-prompts/internal/cli"
)

func main() {
	if err := cli.NewCLI().Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
