// Package main provides the hiring_detector CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hiring_detector",
	Short: "Detect whether companies are actively hiring",
	Long: "hiring_detector determines whether a company is hiring and which roles are open, " +
		"combining ATS platform APIs, career page discovery, headless browser rendering and LLM analysis.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
