package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"flighttrack/internal/di"
	"flighttrack/internal/structures"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flighttrack: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := &structures.CliFlags{}
	flag.StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "log to the console as well as to files")
	flag.Parse()

	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	cleanup()
	return nil
}
