package main

import (
	"os"

	"github.com/elcharitas/mjolnir/internal/app"
)

func main() {
	if err := app.BuildRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
