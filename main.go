package main

import (
	"github.com/gartfeo/navlink/cmd"
)

func main() {
	cmd.Execute()
}
