// Package main provides the CLI entry point for muti-ping.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/postalsys/muti-ping/internal/config"
	"github.com/postalsys/muti-ping/internal/health"
	"github.com/postalsys/muti-ping/internal/icmp"
	"github.com/postalsys/muti-ping/internal/logging"
	"github.com/postalsys/muti-ping/internal/metrics"
	"github.com/postalsys/muti-ping/internal/ping"
)

var (
	// Version is set at build time
	Version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds command-line flags. Flags override the config file only when set.
type options struct {
	configPath     string
	count          int
	interval       time.Duration
	timeout        time.Duration
	match          bool
	ttl            int
	logLevel       string
	logFormat      string
	metricsAddress string
	noColor        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "muti-ping [flags] <host>",
		Short: "Send ICMP echo requests to a host",
		Long: `muti-ping sends an ICMP Echo Request to an IPv4 host once per interval
and prints every reply it receives, until interrupted.

Raw ICMP sockets require root or the CAP_NET_RAW capability.`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cmd, args[0], cfg)
		},
	}

	opts.bind(cmd)
	cmd.AddCommand(configCmd())

	return cmd
}

// bind registers the command-line flags on cmd.
func (o *options) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to configuration file")
	flags.IntVarP(&o.count, "count", "n", 0, "Stop after sending this many requests (0 = until interrupted)")
	flags.DurationVarP(&o.interval, "interval", "i", time.Second, "Pause between requests")
	flags.DurationVarP(&o.timeout, "timeout", "W", 0, "Time to wait for each reply (0 = forever)")
	flags.BoolVar(&o.match, "match", false, "Only report replies to this process's own requests")
	flags.IntVar(&o.ttl, "ttl", icmp.DefaultTTL, "IPv4 time to live for outgoing requests")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logFormat, "log-format", "text", "Log format (text, json)")
	flags.StringVar(&o.metricsAddress, "metrics-address", "", "Serve health and metrics endpoints on this address")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.Default().String())
			return nil
		},
	}
}

// loadConfig reads the config file (if any) and applies explicitly set flags on top.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Ping.Count = o.count
	}
	if flags.Changed("interval") {
		cfg.Ping.Interval = o.interval
	}
	if flags.Changed("timeout") {
		cfg.Ping.ReadTimeout = o.timeout
	}
	if flags.Changed("match") {
		cfg.Ping.MatchReplies = o.match
	}
	if flags.Changed("ttl") {
		cfg.Ping.TTL = o.ttl
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if flags.Changed("metrics-address") {
		cfg.Health.Enabled = o.metricsAddress != ""
		cfg.Health.Address = o.metricsAddress
	}
	if flags.Changed("no-color") && o.noColor {
		cfg.Output.Color = "never"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// healthServerConfig applies the configured health settings on top of the server defaults.
func healthServerConfig(hc config.HealthConfig) health.ServerConfig {
	sc := health.DefaultServerConfig()
	if hc.Address != "" {
		sc.Address = hc.Address
	}
	if hc.ReadTimeout > 0 {
		sc.ReadTimeout = hc.ReadTimeout
	}
	if hc.WriteTimeout > 0 {
		sc.WriteTimeout = hc.WriteTimeout
	}
	return sc
}

// useColor decides whether ping lines are styled.
func useColor(mode string, isTerminal bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal && os.Getenv("NO_COLOR") == ""
	}
}

func run(ctx context.Context, cmd *cobra.Command, host string, cfg *config.Config) error {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	identifier, err := config.ParseIdentifier(cfg.Ping.Identifier, os.Getpid())
	if err != nil {
		return err
	}

	ip, err := ping.ResolveIPv4(ctx, net.DefaultResolver, host)
	if err != nil {
		return err
	}

	sock, err := icmp.NewSocket(cfg.Ping.TTL)
	if err != nil {
		return err
	}
	defer sock.Close()
	sock.SetReadTimeout(cfg.Ping.ReadTimeout)

	// Closing the socket unblocks a pending Receive on shutdown.
	stopClose := context.AfterFunc(ctx, func() { sock.Close() })
	defer stopClose()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetricsWithRegistry(reg)

	isTTY := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	reporter := ping.NewTextReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColor(cfg.Output.Color, isTTY))

	payload := []byte(cfg.Ping.Payload)
	session := ping.NewSession(ip, sock, reporter, ping.Config{
		Interval:     cfg.Ping.Interval,
		Count:        cfg.Ping.Count,
		Payload:      payload,
		Identifier:   identifier,
		MatchReplies: cfg.Ping.MatchReplies,
	})
	session.SetLogger(logger)
	session.SetMetrics(m)

	if cfg.Health.Enabled {
		srv := health.NewServer(healthServerConfig(cfg.Health), session, reg)
		srv.SetLogger(logger)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		defer srv.Stop()
	}

	logger.Debug("resolved target",
		logging.KeyHost, host,
		logging.KeyAddress, ip.String(),
		logging.KeyIdentifier, identifier,
		"payload", humanize.Bytes(uint64(len(payload))))

	reporter.Start(host, ip, len(payload))
	return session.Run(ctx)
}
