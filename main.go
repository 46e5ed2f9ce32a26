package main

import (
	"github.com/avinier/multibagger/internal/cli"
)

func main() {
	cli.Run()
}
