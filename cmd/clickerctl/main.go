package main

import (
	"github.com/tapforge/clicker-server/internal/cli"
)

func main() {
	cli.Execute()
}
