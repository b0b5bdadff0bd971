package main

import (
	"os"

	"github.com/shamanec/find-simulator/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
