// picocpu reports CPU identity and topology.
//
// Usage:
//
//	picocpu show [--format text|json|yaml] [--tolerance 0.05]
//	picocpu show --proc-root ./capture/proc --sys-root ./capture/sys
//	picocpu serve --host 0.0.0.0 --port 8080
//	picocpu version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CristiGvl/picoCPUInfo/api"
	"github.com/CristiGvl/picoCPUInfo/cpuinfo"
	"github.com/CristiGvl/picoCPUInfo/internal/config"
	"github.com/CristiGvl/picoCPUInfo/internal/platform"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// flags holds command line values; they override the config file only
// when set explicitly.
type flags struct {
	configPath string
	verbose    bool
	format     string
	tolerance  float64
	procRoot   string
	sysRoot    string
	host       string
	port       int
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "picocpu",
		Short:         "Report CPU identity and topology",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", envOrDefault(config.EnvVar, ""), "Path to a YAML config file")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	pf.Float64Var(&f.tolerance, "tolerance", topology.DefaultTolerance, "Relative frequency gap under which cores share a group; 0 groups only identical frequencies")
	pf.StringVar(&f.procRoot, "proc-root", "", "Read /proc from this directory")
	pf.StringVar(&f.sysRoot, "sys-root", "", "Read /sys from this directory")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the CPU report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), cmd.OutOrStdout(), cfg, newLogger(f.verbose))
		},
	}
	show.Flags().StringVarP(&f.format, "format", "o", "", "Output format: text, json or yaml")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runServe(cfg, newLogger(f.verbose))
		},
	}
	serve.Flags().StringVar(&f.host, "host", "", "Bind address (default 0.0.0.0)")
	serve.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP port (default 8080)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "picocpu %s (%s/%s)\n", version, platform.GetOS(), platform.GetArch())
		},
	}

	root.AddCommand(show, serve, versionCmd)
	return root
}

// loadConfig loads the config file and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("tolerance") {
		cfg.Tolerance = f.tolerance
	}
	if changed("proc-root") {
		cfg.ProcRoot = f.procRoot
	}
	if changed("sys-root") {
		cfg.SysRoot = f.sysRoot
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func queryOptions(cfg *config.Config) cpuinfo.Options {
	tolerance := cfg.Tolerance
	return cpuinfo.Options{
		Tolerance: &tolerance,
		ProcRoot:  cfg.ProcRoot,
		SysRoot:   cfg.SysRoot,
	}
}

func runShow(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Debug("querying cpu", "tolerance", cfg.Tolerance, "proc_root", cfg.ProcRoot, "sys_root", cfg.SysRoot)

	info, err := cpuinfo.QueryContext(ctx, queryOptions(cfg))
	if err != nil {
		return err
	}
	logger.Debug("cpu resolved", "model", info.ModelName, "physical_cores", info.PhysicalCores, "kind", info.Topology.Kind)

	return render(out, info, cfg.Format)
}

// render writes the report in the requested format.
func render(out io.Writer, info cpuinfo.CPUInfo, format string) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(info); err != nil {
			return err
		}
		return encoder.Close()
	case config.FormatText, "":
		_, err := io.WriteString(out, info.String())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	server, err := api.NewServer(nil, queryOptions(cfg))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		logger.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting picocpu server", "address", address, "platform", platform.GetOS())
	return server.Start(address)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// envOrDefault returns the value of an env var, or fallback if unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
