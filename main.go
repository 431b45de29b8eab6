package main

import (
	"fmt"
	"os"

	"github.com/CyborPunk-2077/article-scraper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
