// Package cmd implements the command-line interface for the article scraper.
// It provides the root command and subcommands for running scrapes, pipeline
// stages, and the API server.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CyborPunk-2077/article-scraper/cmd/convert"
	"github.com/CyborPunk-2077/article-scraper/cmd/scrape"
	"github.com/CyborPunk-2077/article-scraper/cmd/serve"
	"github.com/CyborPunk-2077/article-scraper/cmd/sessions"
	"github.com/CyborPunk-2077/article-scraper/cmd/summarize"
	"github.com/CyborPunk-2077/article-scraper/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "article-scraper",
		Short: "A news-site scrape, convert, and summarize pipeline",
		Long: `article-scraper crawls a news site for articles, stores raw records
and images in object storage, converts them to plain text, and produces
summaries and image captions through an inference service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Parse flags early so --config and --debug shape the viper setup.
	_ = rootCmd.ParseFlags(os.Args[1:])

	initConfig()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("article-scraper version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(convert.Command())
	rootCmd.AddCommand(summarize.Command())
	rootCmd.AddCommand(sessions.Command())
	rootCmd.AddCommand(serve.Command())
}

// initConfig wires the environment, an optional .env file, and an optional
// YAML file into viper. An explicit --config path takes precedence over the
// default search paths.
func initConfig() {
	config.InitializeViper(cfgFile)

	if debug {
		viper.Set("app.debug", true)
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
	}
}
