package main

import (
	"os"

	"github.com/sahib/mimedetect/cmd"
)

func main() {
	os.Exit(cmd.RunCmdline(os.Args))
}
