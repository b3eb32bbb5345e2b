package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/jlaunch/internal/buildinfo"
	"github.com/provide-io/jlaunch/pkg/builder"
	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/logging"
)

var (
	manifestPath string
	outputPath   string
	stubPath     string
	stubSize     int64
	logLevel     string
	rootCmd      *cobra.Command
	versionFlag  bool
)

func init() {
	rootCmd = &cobra.Command{
		Use:          "jlaunch-builder",
		Short:        "Build jlaunch executables",
		Long:         `Append an application container described by a YAML manifest to the jlaunch stub.`,
		RunE:         build,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the YAML manifest (required)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the executable (required)")
	rootCmd.Flags().StringVar(&stubPath, "stub", "", "Path to the jlaunch stub binary (required)")
	rootCmd.Flags().Int64Var(&stubSize, "stub-size", container.DefaultStubSize, "Size the stub is padded to")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	for _, name := range []string{"manifest", "output", "stub"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func printVersion() {
	fmt.Printf("jlaunch-builder %s\n", buildinfo.Version)
	fmt.Printf("Built: %s\n", buildinfo.Timestamp())
}

func main() {
	// Handle --version or -V before cobra checks required flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func build(cmd *cobra.Command, args []string) error {
	if versionFlag {
		printVersion()
		return nil
	}

	level := logLevel
	if level == "" {
		level = os.Getenv("JLAUNCH_BUILDER_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	logOutput, closeLog := logging.LogOutput(os.Stderr)
	defer closeLog()
	logger := logging.NewLogger("jlaunch-builder", level, logOutput)
	logger.Info("☕ jlaunch builder starting", "version", buildinfo.Version)

	m, err := builder.LoadManifest(manifestPath)
	if err != nil {
		logger.Error("❌ Failed to load manifest", "error", err)
		return err
	}
	return builder.Build(builder.Options{
		Manifest:   m,
		StubPath:   stubPath,
		OutputPath: outputPath,
		StubSize:   stubSize,
	}, logger)
}
