package main

import (
	"context"
	"os"

	"gfx.cafe/util/go/gotel"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taffy",
	Short: "thread-affinity worker pool for blocking SQL sources",
}

func main() {
	fn, _ := gotel.InitTracing(context.Background(), gotel.WithServiceName("taffy"))
	defer fn(context.Background())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
