package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/noders-team/go-jsonmapper/internal/codegen"
	"github.com/noders-team/go-jsonmapper/pkg/codec"
)

var (
	input  string
	dir    string
	output string
	file   string
	debug  bool
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "jsonmapper",
		Short: "JSON to Go struct mapper tooling",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	genCmd := &cobra.Command{
		Use:   "gen --input <package> [--dir <dir>] [--output <dir>]",
		Short: "Generate MemberDocs methods from doc comments",
		Long: `Scans a Go package for struct fields and Set* methods whose doc comments carry
annotations (@var, @param, @required) and generates a MemberDocs method per struct,
so the mapper can read the annotations at run time. Every struct also gets a
PackageTypes method listing the structs of the package, so type names used only in
annotations resolve.`,
		Example: `  jsonmapper gen --input ./models
  jsonmapper gen --input example.com/shop/models --dir ./shop --output ./shop/models --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodeGen(dir, input, output, debug)
		},
	}
	genCmd.Flags().StringVar(&input, "input", ".", "package pattern to scan")
	genCmd.Flags().StringVar(&dir, "dir", "", "directory the package pattern is resolved in (default: working directory)")
	genCmd.Flags().StringVar(&output, "output", "", "output directory (default: the package directory)")

	decodeCmd := &cobra.Command{
		Use:   "decode --file <path>",
		Short: "Decode a JSON file and print it in document key order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, file, debug)
		},
	}
	decodeCmd.Flags().StringVar(&file, "file", "", "path to the JSON file (required)")
	if err := decodeCmd.MarkFlagRequired("file"); err != nil {
		log.Fatal().Err(err).Msg("failed to configure decode command")
	}

	rootCmd.AddCommand(genCmd, decodeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runCodeGen(dir, pattern, outputDir string, debugMode bool) error {
	pkg, err := codegen.GetPackage(dir, pattern)
	if err != nil {
		return fmt.Errorf("failed to scan package '%s': %w", pattern, err)
	}
	log.Info().Msgf("scanned %s: %d structs", pkg.Path, len(pkg.Structs))

	if debugMode {
		log.Debug().Msg(spew.Sdump(pkg.Documented()))
	}

	if outputDir == "" {
		outputDir = pkg.Dir
	}
	outputFile, err := codegen.Generate(pkg, outputDir)
	if err != nil {
		return err
	}
	if outputFile != "" {
		log.Info().Msgf("successfully generated: %s", outputFile)
	}
	return nil
}

func runDecode(cmd *cobra.Command, path string, debugMode bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	value, err := codec.Decode(data)
	if err != nil {
		return err
	}
	if debugMode {
		log.Debug().Msg(spew.Sdump(value))
	}

	out, err := codec.Encode(value, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
