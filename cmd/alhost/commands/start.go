package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/internal/telemetry"
	"github.com/benhaub/abstractionlayer/pkg/config"
	"github.com/benhaub/abstractionlayer/pkg/metrics"
	// Imported for its init() side effect: registers the prometheus
	// eventqueue metrics constructor with pkg/metrics.
	_ "github.com/benhaub/abstractionlayer/pkg/metrics/prometheus"
	"github.com/benhaub/abstractionlayer/pkg/network"
	"github.com/benhaub/abstractionlayer/pkg/osal"
	osalapi "github.com/benhaub/abstractionlayer/pkg/osal/api"
	"github.com/benhaub/abstractionlayer/pkg/status"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Bring up the configured network interfaces and admin servers",
	Long: `Start loads configuration, brings up every configured network
interface on its own event-queue-owning thread, and serves the
read-only osal admin API and (if enabled) a Prometheus metrics
endpoint until interrupted.

Examples:
  alhost start
  alhost start --config /etc/alhost/config.yaml
  ALHOST_LOGGING_LEVEL=DEBUG alhost start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "alhost",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    cfg.Telemetry.Profiling.ApplicationName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("alhost starting", "version", Version, "config_source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	osSvc := osal.Get()

	stop := make(chan struct{})
	ifaces := make(map[string]network.NetworkInterface, len(cfg.Network.Interfaces))
	for _, ifaceCfg := range cfg.Network.Interfaces {
		iface, err := bringUpInterface(osSvc, ifaceCfg, stop)
		if err != nil {
			close(stop)
			return fmt.Errorf("bring up interface %q: %w", ifaceCfg.Name, err)
		}
		ifaces[ifaceCfg.Name] = iface
		logger.Info("interface up", "name", ifaceCfg.Name, "kind", ifaceCfg.Kind)
	}

	aggregator := status.NewAggregator(osSvc)
	for name, iface := range ifaces {
		aggregator.RegisterNetwork(name, iface, iface.EventQueue().Owner())
	}

	sink, err := buildStatusSink(ctx, cfg.Status)
	if err != nil {
		close(stop)
		return fmt.Errorf("configure status sink: %w", err)
	}

	var servers []*http.Server

	if cfg.Metrics.Enabled {
		collector := status.NewCollector(aggregator)
		metrics.GetRegistry().MustRegister(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		servers = append(servers, srv)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics server listening", "port", cfg.Metrics.Port)
	}

	if cfg.OsalAPI.Enabled {
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.OsalAPI.Port), Handler: osalapi.NewRouter(osSvc)}
		servers = append(servers, srv)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("osal api server error", "error", err)
			}
		}()
		logger.Info("osal admin api listening", "port", cfg.OsalAPI.Port)
	}

	var snapshotDone chan struct{}
	if sink != nil {
		snapshotDone = runStatusSnapshotLoop(ctx, aggregator, sink, cfg.Status.Interval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("alhost is running. Press Ctrl+C to stop.")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received, initiating graceful shutdown")

	cancel()
	close(stop)
	if snapshotDone != nil {
		<-snapshotDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", "error", err)
		}
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Warn("status sink close error", "error", err)
		}
	}

	logger.Info("alhost stopped")
	return nil
}

// buildStatusSink constructs the status.Sink cfg.SinkKind selects, or
// nil if none is configured.
func buildStatusSink(ctx context.Context, cfg config.StatusConfig) (status.Sink, error) {
	switch cfg.SinkKind {
	case "":
		return nil, nil
	case "gorm":
		return status.NewGormSink(status.GormSinkConfig{DSN: cfg.Gorm.DSN})
	case "badger":
		return status.NewBadgerSink(status.BadgerSinkConfig{Dir: cfg.Badger.Dir, Capacity: cfg.Badger.Capacity})
	case "s3":
		return status.NewS3Sink(ctx, status.S3SinkConfig{
			Bucket:    cfg.S3.Bucket,
			KeyPrefix: cfg.S3.KeyPrefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown status sink kind %q", cfg.SinkKind)
	}
}

// runStatusSnapshotLoop periodically records a status.Snapshot to sink
// until ctx is cancelled, returning a channel closed once the loop has
// exited so callers can wait for the last in-flight record to finish.
func runStatusSnapshotLoop(ctx context.Context, agg *status.Aggregator, sink status.Sink, interval time.Duration) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sink.Record(ctx, agg.Snapshot()); err != nil {
					logger.Warn("status snapshot record error", "error", err)
				}
			}
		}
	}()
	return done
}
