package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Keats0206/fundtrack/internal/cli"
)

func main() {
	// .env.local wins over .env; neither overrides the real environment
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", f, err)
			}
		}
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
