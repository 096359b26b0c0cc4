// Integration List Exporter
//
// A companion daemon for Home Assistant that writes a CSV inventory of the
// installation (system facts, add-ons, integrations) into the config
// directory every day, and on demand via MQTT or the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/spf13/pflag"

	"github.com/nerrad567/integration-list-exporter/internal/api"
	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/exporter"
	"github.com/nerrad567/integration-list-exporter/internal/history"
	"github.com/nerrad567/integration-list-exporter/internal/host/homeassistant"
	"github.com/nerrad567/integration-list-exporter/internal/host/local"
	"github.com/nerrad567/integration-list-exporter/internal/host/supervisor"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/config"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/database"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/influxdb"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/logging"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/mqtt"
	"github.com/nerrad567/integration-list-exporter/internal/notify"
	"github.com/nerrad567/integration-list-exporter/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// errGenerationFailed makes --once exit non-zero.
var errGenerationFailed = errors.New("report generation failed")

// options are the command-line flags.
type options struct {
	configPath  string
	once        bool
	issueToken  string
	tokenTTL    time.Duration
	showVersion bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("integrationexporter", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", configPathFromEnv(), "path to config.yaml")
	fs.BoolVar(&opts.once, "once", false, "generate one report and exit")
	fs.StringVar(&opts.issueToken, "issue-token", "", "print an API bearer token for `subject` and exit")
	fs.DurationVar(&opts.tokenTTL, "token-ttl", 365*24*time.Hour, "lifetime of tokens minted with --issue-token")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// configPathFromEnv returns INTEGRATIONEXPORTER_CONFIG or the default path.
func configPathFromEnv() string {
	if path := os.Getenv("INTEGRATIONEXPORTER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// run is the application, separated from main for testability.
func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.showVersion {
		fmt.Fprintf(stdout, "integrationexporter %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	log := logging.Default()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.issueToken != "" {
		token, tokenErr := api.IssueToken(cfg.Security.JWT.Secret, opts.issueToken, opts.tokenTTL)
		if tokenErr != nil {
			return fmt.Errorf("issuing token: %w", tokenErr)
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting Integration List Exporter",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", opts.configPath,
	)

	ha, err := homeassistant.New(homeassistant.Config{
		URL:     cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
		Timeout: cfg.GetRequestTimeout(),
	}, log.With("component", "homeassistant"))
	if err != nil {
		return fmt.Errorf("creating Home Assistant client: %w", err)
	}
	defer func() {
		if closeErr := ha.Close(); closeErr != nil {
			log.Warn("error closing Home Assistant connection", "error", closeErr)
		}
	}()

	deps, sup, err := hostDeps(cfg, ha, log)
	if err != nil {
		return err
	}
	factory := generatorFactory(cfg, deps, log)

	if opts.once {
		return runOnce(ctx, factory)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	entryRepo := entry.NewSQLiteRepository(db.DB)
	historyRepo := history.NewSQLiteRepository(db.DB)
	services := entry.NewServices()
	metrics := notify.NewMetrics()

	manager := entry.NewManager(factory, services,
		entry.WithRepository(entryRepo),
		entry.WithLogger(log.With("component", "entry")),
	)
	manager.AddObserver(history.NewRecorder(historyRepo, log))
	manager.AddObserver(metrics)

	checks := map[string]api.HealthChecker{
		"database": db.HealthCheck,
		"homeassistant": func(ctx context.Context) error {
			_, err := ha.Config(ctx)
			return err
		},
	}
	if sup != nil {
		checks["supervisor"] = sup.Ping
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		manager.AddObserver(notify.NewInfluxRecorder(influxClient, log))
		checks["influxdb"] = influxClient.HealthCheck
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })

		manager.AddObserver(notify.NewStatusPublisher(mqttClient, log))
		listener := notify.NewCommandListener(mqttClient, services, byte(cfg.MQTT.QoS), log)
		if err := listener.Listen(ctx); err != nil {
			return err
		}
		defer listener.Wait()
		checks["mqtt"] = mqttClient.HealthCheck
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	if err := seedEntries(ctx, entryRepo, cfg, log); err != nil {
		return err
	}
	defer manager.Close()
	loaded, err := manager.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading entries: %w", err)
	}
	log.Info("entries loaded", "count", loaded)

	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Security: cfg.Security,
			Logger:   log.With("component", "api"),
			Entries:  manager,
			Services: services,
			History:  historyRepo,
			Metrics:  metrics.Handler(),
			Checks:   checks,
			OnRemove: metrics.Forget,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	notifySystemd(log, daemon.SdNotifyReady)
	startWatchdog(ctx, log)
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	notifySystemd(log, daemon.SdNotifyStopping)
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// hostDeps selects the host collaborators. The returned Supervisor client is
// nil when the Supervisor is disabled.
func hostDeps(cfg *config.Config, ha *homeassistant.Client, log *logging.Logger) (exporter.Deps, *supervisor.Client, error) {
	deps := exporter.Deps{
		Config:  ha,
		Loader:  ha,
		Custom:  ha,
		Runtime: ha,
	}

	if cfg.Exporter.RuntimeSource == config.RuntimeSourceLocal {
		deps.Runtime = local.New()
		log.Info("reading runtime facts from the local process table")
	}

	if !cfg.Supervisor.Enabled {
		log.Info("Supervisor disabled, reporting as not supervised")
		return deps, nil, nil
	}
	sup, err := supervisor.New(supervisor.Config{
		URL:      cfg.Supervisor.URL,
		Token:    cfg.Supervisor.Token,
		Timeout:  cfg.GetRequestTimeout(),
		RetryMax: cfg.Supervisor.RetryMax,
	}, log.With("component", "supervisor"))
	if err != nil {
		return exporter.Deps{}, nil, fmt.Errorf("creating Supervisor client: %w", err)
	}
	deps.Supervisor = sup
	return deps, sup, nil
}

func generatorFactory(cfg *config.Config, deps exporter.Deps, log *logging.Logger) entry.GeneratorFactory {
	return func(e entry.Entry) (entry.Generator, error) {
		g, err := exporter.New(deps, exporter.Options{
			Filename:  cfg.Exporter.Filename,
			ConfigDir: cfg.HomeAssistant.ConfigDir,
		}, log.With("entry_id", e.ID))
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// runOnce generates a single report without touching the database.
func runOnce(ctx context.Context, factory entry.GeneratorFactory) error {
	gen, err := factory(entry.Entry{ID: "once"})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	if res := gen.GenerateReport(ctx); !res.OK() {
		return fmt.Errorf("%w: %w", errGenerationFailed, res.Err)
	}
	return nil
}

// seedEntries creates the configured entries on first start. An empty
// entries list seeds one default entry. Invalid update times are logged and
// skipped so one typo does not stop the daemon.
func seedEntries(ctx context.Context, repo entry.Repository, cfg *config.Config, log *logging.Logger) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := cfg.Entries
	if len(seeds) == 0 {
		seeds = []config.EntryConfig{{}}
	}
	for _, s := range seeds {
		updateTime := s.UpdateTime
		if updateTime == "" {
			updateTime = cfg.Exporter.DefaultUpdateTime
		}
		e, err := entry.New(s.Title, updateTime)
		if err != nil {
			log.Error("skipping configured entry", "title", s.Title, "update_time", updateTime, "error", err)
			continue
		}
		if err := repo.Create(ctx, &e); err != nil {
			return fmt.Errorf("creating entry %q: %w", e.Title, err)
		}
		log.Info("entry created", "entry_id", e.ID, "title", e.Title, "update_time", e.UpdateTime)
	}
	return nil
}

// notifySystemd is a no-op outside systemd.
func notifySystemd(log *logging.Logger, state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Warn("systemd notification failed", "state", state, "error", err)
	}
}

// startWatchdog pings the systemd watchdog at half the configured interval
// until ctx ends. Nothing happens when WatchdogSec is unset.
func startWatchdog(ctx context.Context, log *logging.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				notifySystemd(log, daemon.SdNotifyWatchdog)
			}
		}
	}()
	log.Info("systemd watchdog enabled", "interval", interval)
}
