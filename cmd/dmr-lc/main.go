package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dbehnke/dmr-lc/pkg/capture"
	"github.com/dbehnke/dmr-lc/pkg/config"
	"github.com/dbehnke/dmr-lc/pkg/database"
	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/lc"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	"github.com/dbehnke/dmr-lc/pkg/metrics"
	"github.com/dbehnke/dmr-lc/pkg/mqtt"
	"github.com/dbehnke/dmr-lc/pkg/radioid"
	"github.com/dbehnke/dmr-lc/pkg/web"
	"github.com/spf13/pflag"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// logSink writes every decoded message to the log
type logSink struct {
	log *logger.Logger
}

func (s logSink) Name() string { return "log" }

func (s logSink) Handle(_ context.Context, r decoder.Result) error {
	rec := decoder.NewRecord(r)
	fields := []logger.Field{
		logger.Int("timeslot", rec.Timeslot+1),
		logger.String("kind", rec.Kind),
		logger.Bool("valid", rec.Valid),
		logger.String("bits", rec.Bits),
	}
	if rec.Source != 0 {
		fields = append(fields, logger.Uint32("source", rec.Source))
	}
	if rec.Destination != 0 {
		fields = append(fields, logger.Uint32("destination", rec.Destination), logger.Bool("group", rec.Group))
	}
	if rec.Callsign != "" {
		fields = append(fields, logger.String("callsign", rec.Callsign))
	}
	if rec.Alias != "" {
		fields = append(fields, logger.String("alias", rec.Alias))
	}
	if rec.CorrectedBits > 0 {
		fields = append(fields, logger.Int("corrected_bits", rec.CorrectedBits))
	}
	s.log.Info(rec.Opcode, fields...)
	return nil
}

func main() {
	configFile := pflag.StringP("config", "c", "config.yaml", "Path to configuration file")
	captureFile := pflag.StringP("capture", "f", "", "Capture file to decode (overrides decoder.capture)")
	linger := pflag.Bool("linger", false, "Keep serving after the capture is decoded")
	showVersion := pflag.BoolP("version", "v", false, "Show version information")
	validate := pflag.Bool("validate", false, "Validate configuration and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("dmr-lc %s (%s, built %s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	// Console logger until the configured one is built
	log := logger.New(logger.Config{Level: "info", Format: "text"})

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	if *validate {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	log = logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	defer func() { _ = log.Close() }()

	web.SetVersionInfo(web.VersionInfo{Version: version, Commit: commit, BuildTime: buildTime})

	log.Info("Starting dmr-lc",
		logger.String("version", version),
		logger.String("build_time", buildTime),
		logger.String("config_file", *configFile))

	path := cfg.Decoder.Capture
	if *captureFile != "" {
		path = *captureFile
	}
	if path == "" {
		log.Error("No capture file given; set decoder.capture or pass --capture")
		os.Exit(1)
	}
	c, err := capture.Load(path)
	if err != nil {
		log.Error("Failed to load capture", logger.String("path", path), logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	factory := lc.NewFactory(log)
	pipeline := decoder.NewPipeline(decoder.New(factory), log, cfg.Decoder.QueueSize)

	collector := metrics.NewCollector()
	pipeline.OnMalformed = collector.Malformed
	pipeline.AddSink(collector)

	if cfg.Decoder.LogMessages {
		pipeline.AddSink(logSink{log: log.WithComponent("lc")})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		metricsServer := metrics.NewPrometheusServer(
			metrics.PrometheusConfig{
				Enabled: cfg.Metrics.Prometheus.Enabled,
				Port:    cfg.Metrics.Prometheus.Port,
				Path:    cfg.Metrics.Prometheus.Path,
			},
			collector,
			log,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
	}

	// Stored messages back the dashboard's history when enabled
	var store web.MessageStore
	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log)
		if err != nil {
			log.Error("Failed to open database", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		messages := database.NewMessageRepository(db.GetDB())
		pipeline.AddSink(database.NewMessageSink(messages))
		store = messages

		if cfg.Database.Retention > 0 {
			retention := database.NewRetention(messages, cfg.Database.Retention, log)
			wg.Add(1)
			go func() {
				defer wg.Done()
				retention.Start(ctx)
			}()
		}

		if cfg.RadioID.Enabled {
			users := database.NewDMRUserRepository(db.GetDB())
			pipeline.Directory = users

			syncer := radioid.NewSyncer(cfg.RadioID.URL, users, log)
			wg.Add(1)
			go func() {
				defer wg.Done()
				syncer.Start(ctx)
			}()
		}
	}

	if cfg.MQTT.Enabled {
		publisher := mqtt.New(
			mqtt.Config{
				Enabled:     cfg.MQTT.Enabled,
				Broker:      cfg.MQTT.Broker,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				QoS:         cfg.MQTT.QoS,
				Retained:    cfg.MQTT.Retained,
			},
			log,
		)
		publisher.Metrics = collector.Flatten

		// Connect before decoding so no result is published ahead of the session
		if err := publisher.Connect(ctx); err != nil {
			log.Error("MQTT publisher disabled for this run", logger.Error(err))
		} else {
			pipeline.AddSink(publisher)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := publisher.Start(ctx); err != nil && err != context.Canceled {
					log.Error("MQTT publisher error", logger.Error(err))
				}
			}()
		}
	}

	if cfg.Web.Enabled {
		server := web.NewServer(cfg.Web, store, collector, log)
		pipeline.AddSink(server)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
	}

	log.Info("Decoding capture",
		logger.String("name", c.Name),
		logger.Int("bursts", len(c.Bursts)),
		logger.String("session_id", pipeline.SessionID()))

	done := make(chan decoder.Stats, 1)
	go func() { done <- pipeline.RunCapture(ctx, c) }()

	select {
	case stats := <-done:
		log.Info("Capture decoded",
			logger.Int("decoded", stats.Decoded),
			logger.Int("valid", stats.Valid),
			logger.Int("invalid", stats.Invalid),
			logger.Int("malformed", stats.Malformed),
			logger.Int("sink_errors", stats.SinkErrs))

		if *linger || cfg.Decoder.Linger {
			log.Info("Lingering until shutdown signal")
			sig := <-sigChan
			log.Info("Received shutdown signal", logger.String("signal", sig.String()))
		}
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.String("signal", sig.String()))
		cancel()
		<-done
	}

	cancel()
	wg.Wait()

	log.Info("dmr-lc stopped")
}
