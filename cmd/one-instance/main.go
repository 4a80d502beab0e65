package main

import (
	"github.com/Paintersrp/oneinstance/internal/cli"
)

func main() {
	cli.Execute()
}
