package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jax-b/crossslider/pkg/crossslider"
)

// set through -ldflags at build time
var (
	gitCommit  string
	versionTag string
	buildType  string
)

func main() {
	verbose := flag.Bool("verbose", false, "log at debug level, including every touch line read")
	flag.BoolVar(verbose, "v", false, "shorthand for --verbose")
	configDir := flag.String("config-dir", ".", "directory holding config.yaml")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Reads \"down X Y\", \"move X Y\" and \"up\" lines from the configured input")
		fmt.Fprintln(flag.CommandLine.Output(), "and reports \"value X Y\" whenever the slider value changes.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}

	flag.Parse()

	logger, err := crossslider.NewLogger(buildType, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossslider: create logger: %v\n", err)
		os.Exit(1)
	}

	defer func() { _ = logger.Sync() }()

	named := logger.Named("main")
	named.Debugw("Starting",
		"gitCommit", gitCommit,
		"versionTag", versionTag,
		"buildType", buildType,
		"configDir", *configDir)

	cs, err := crossslider.NewCrossSlider(logger, *configDir, *verbose)
	if err != nil {
		named.Fatalw("Failed to create crossslider", "error", err)
	}

	if version := versionString(); version != "" {
		cs.SetVersion(version)
	}

	if err := cs.Initialize(); err != nil {
		named.Fatalw("Crossslider exited with an error", "error", err)
	}
}

// versionString prefers the tag over the commit, and is empty for builds
// that weren't stamped by the build scripts
func versionString() string {
	identifier := versionTag
	if identifier == "" {
		identifier = gitCommit
	}

	if buildType == "" || identifier == "" {
		return ""
	}

	return fmt.Sprintf("%s-%s", buildType, identifier)
}
