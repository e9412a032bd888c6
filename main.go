package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/zenml-io/zendeploy/internal/cli"
)

func main() {
	logLevel := log.InfoLevel
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		logLevel = log.DebugLevel
	case "ERROR":
		logLevel = log.ErrorLevel
	}

	log.SetLevel(logLevel)
	log.SetReportTimestamp(true)

	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
