package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kyleking/filter-flow/cmd"
	"github.com/kyleking/filter-flow/internal/errors"
)

func main() {
	if err := cmd.Execute(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}
