package main

import (
	"os"

	"kumeo/cmd"
)

func main() {
	os.Exit(cmd.RunCompiler())
}
