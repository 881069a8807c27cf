package main

import (
	"context"
	"os"

	_ "github.com/System-rat/mcsmp/cmd"
	"github.com/System-rat/mcsmp/cmd/root"
)

func main() {
	if err := root.RootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
