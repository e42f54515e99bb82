package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// ONECARD_* settings may live in a local .env file.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, palette.Loss.Sprintf("error: %v", err))
		os.Exit(1)
	}
}
