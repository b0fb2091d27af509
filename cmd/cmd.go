package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ardanlabs/rtwbind/config"
	"github.com/ardanlabs/rtwbind/generator"
	"github.com/ardanlabs/rtwbind/locator"
	"github.com/ardanlabs/rtwbind/logutil"
	"github.com/ardanlabs/rtwbind/parser"
)

type cli struct {
	fs        afero.Fs
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv func(string) (string, bool)
}

// job is a resolved and parsed model header.
type job struct {
	cfg    config.Config
	log    *slog.Logger
	path   string
	model  string
	header *parser.Header
}

func NewCLI() *cobra.Command {
	c := &cli{
		fs:        afero.NewOsFs(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
	}
	return c.root()
}

func (c *cli) root() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rtwbind",
		Short: "Generate Go wrappers for code-generated fixed-step models",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}
	rootCmd.SetOut(c.stdout)
	rootCmd.SetErr(c.stderr)

	rootCmd.PersistentFlags().String("config", "", "config file (default \""+config.DefaultFile+"\" if present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log parsing progress")
	rootCmd.PersistentFlags().Bool("trace", false, "log every parsed field")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the Go wrapper for a model header",
		Args:  cobra.NoArgs,
		RunE:  c.generateHandler,
	}
	addModelFlags(generateCmd)
	generateCmd.Flags().String("mode", "", "generation mode: "+strings.Join(generator.Modes(), " or "))
	generateCmd.Flags().String("package", "", "Go package name (default: lower-cased model)")
	generateCmd.Flags().String("lib", "", "shared library base name (default: model)")
	generateCmd.Flags().String("alias", "", "additional type alias for the wrapper")
	generateCmd.Flags().StringP("output", "o", "", "output directory")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the inputs, outputs and states parsed from a model header",
		Args:  cobra.NoArgs,
		RunE:  c.inspectHandler,
	}
	addModelFlags(inspectCmd)
	inspectCmd.Flags().Bool("yaml", false, "print the field lists as YAML")

	locateCmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the model header that would be used",
		Args:  cobra.NoArgs,
		RunE:  c.locateHandler,
	}
	addModelFlags(locateCmd)
	locateCmd.Flags().Bool("all", false, "list every candidate header in the directory")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "List the environment variables rtwbind reads",
		Args:  cobra.NoArgs,
		RunE:  c.envHandler,
	}

	rootCmd.AddCommand(generateCmd, inspectCmd, locateCmd, envCmd)

	return rootCmd
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "model identifier (default: from the header)")
	cmd.Flags().String("header", "", "path to the model header")
	cmd.Flags().String("dir", "", "directory scanned for the model header")
	cmd.Flags().Bool("strict", false, "fail on unrecognized struct body lines")
}

// loadConfig layers defaults, the config file, the environment and the
// command line flags, in that order.
func (c *cli) loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(c.fs, ".env"); err != nil {
		return config.Config{}, nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if !required {
		path = config.DefaultFile
	}

	cfg, err := config.Load(c.fs, path, required)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.ApplyEnv(c.lookupEnv); err != nil {
		return cfg, nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"model":   &cfg.Model,
		"header":  &cfg.Header,
		"dir":     &cfg.Dir,
		"mode":    &cfg.Mode,
		"package": &cfg.Package,
		"lib":     &cfg.Lib,
		"alias":   &cfg.Alias,
		"output":  &cfg.Output,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Lookup("strict") != nil && flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	trace, _ := cmd.Flags().GetBool("trace")
	logger := logutil.NewLogger(c.stderr, logutil.Level(verbose || cfg.Debug, trace))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func (c *cli) load(cmd *cobra.Command) (*job, error) {
	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	loc := locator.New(c.fs, logger)

	path, err := loc.Resolve(cfg.Header, cfg.Dir, cfg.Model)
	if err != nil {
		return nil, err
	}

	content, err := loc.Read(path)
	if err != nil {
		return nil, err
	}

	header, err := parser.Parse(content, parser.WithStrict(cfg.Strict), parser.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	model := cfg.Model
	if model == "" {
		model = header.Model
	}
	if model == "" {
		model = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	logger.Debug("parsed model header", "model", model, "path", path,
		"inputs", len(header.Inputs), "outputs", len(header.Outputs), "states", len(header.States))

	return &job{
		cfg:    cfg,
		log:    logger,
		path:   path,
		model:  model,
		header: header,
	}, nil
}
