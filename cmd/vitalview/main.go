package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amarret/vitalview/internal/badge"
	"github.com/amarret/vitalview/internal/config"
	"github.com/amarret/vitalview/internal/overlay"
	"github.com/amarret/vitalview/internal/prefs"
	"github.com/amarret/vitalview/internal/source"
	"github.com/amarret/vitalview/internal/storage"
	"github.com/amarret/vitalview/internal/telemetry"
	"github.com/amarret/vitalview/internal/timing"
	"github.com/amarret/vitalview/internal/version"
	"github.com/amarret/vitalview/internal/vitals"
	"github.com/chromedp/chromedp"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("vitalview v%s starting...", version.Version)

	configPath := flag.String("config", "config.json", "Path to JSON configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logrus.Infof("Configuration loaded: target=%s, badge subject=%s", cfg.TargetURL, cfg.BadgeSubject)

	// Initialize storage
	store, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	logrus.Infof("Database initialized: %s", cfg.DBPath)

	origin, err := vitals.Origin(cfg.TargetURL)
	if err != nil || origin == "" {
		logrus.Fatalf("Invalid target URL: %s", cfg.TargetURL)
	}

	// Load preferences and follow external edits
	preferences, err := prefs.Load(cfg.PrefsPath)
	if err != nil {
		logrus.Fatalf("Failed to load preferences: %v", err)
	}
	if err := preferences.Watch(); err != nil {
		logrus.Warnf("Preference watching unavailable: %v", err)
	}
	defer preferences.Close()

	// Initialize telemetry
	tracker := telemetry.NewTracker(prometheus.DefaultRegisterer)
	emitter := timing.NewEmitter(prometheus.DefaultRegisterer)
	telemetrySrv := telemetry.StartServer(cfg.ListenAddr, prometheus.DefaultGatherer)

	logrus.Infof("Telemetry listening on %s", cfg.ListenAddr)

	// Connect the badge channel. The agent is best-effort telemetry:
	// an unreachable channel disables badge updates and rendering but
	// never stops the aggregation.
	var conn *nats.Conn
	conn, err = nats.Connect(cfg.NATSURL, nats.Name("vitalview"))
	if err != nil {
		logrus.Warnf("Badge channel unavailable, updates will be skipped: %v", err)
		conn = nil
	}

	// Setup headless browser
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	// Open the browser with a blank page before attaching
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		logrus.Fatalf("Failed to start browser: %v", err)
	}

	// Attach the measurement source
	src, err := source.Attach(tabCtx)
	if err != nil {
		logrus.Fatalf("Failed to attach measurement source: %v", err)
	}

	logrus.Infof("Attached to tab %s", src.TargetID())

	tabs := badge.NewTabRegistry()

	// Start the badge responder and channel on the same connection
	var channel vitals.Channel
	var responder *badge.Responder
	if conn != nil {
		responder = badge.NewResponder(conn, cfg.BadgeSubject, src.TargetID())
		responder.OnVerdict = func(tabID string, verdict vitals.Verdict) {
			tracker.BadgeUpdated(tabID, verdict == vitals.VerdictGood)
		}
		if err := responder.Start(); err != nil {
			logrus.Fatalf("Failed to start badge responder: %v", err)
		}

		channel = badge.NewChannel(conn, cfg.BadgeSubject, time.Duration(cfg.BadgeTimeoutMs)*time.Millisecond)
	}

	// Build the overlay on the live page
	var ov *overlay.Overlay
	surface, err := overlay.NewChromeSurface(tabCtx, func() { ov.Dismiss(tabCtx) })
	if err != nil {
		logrus.Fatalf("Failed to set up overlay surface: %v", err)
	}
	ov = overlay.New(surface)

	// Assemble the session
	sess := vitals.NewSession(
		store.Origin(origin),
		preferences,
		channel,
		ov,
		tabs,
		emitter,
		vitals.SessionConfig{
			ReportAllChanges: cfg.ReportAllChanges,
			OnObservation: func(metric vitals.Metric, value float64) {
				tracker.ObservationProcessed(string(metric), value)
			},
			OnBroadcast: func(verdict vitals.Verdict) {
				tracker.BroadcastSent(string(verdict))
			},
		},
	)
	ov.OnDismiss(sess.Dismiss)

	// Register observers before navigating so the scripts land on the
	// new document
	if err := sess.InstallObservers(tabCtx, src); err != nil {
		logrus.Fatalf("Failed to install observers: %v", err)
	}

	// Navigate and initialize the scoreboard for this page load
	navCtx, cancelNav := context.WithTimeout(tabCtx, time.Duration(cfg.NavigateTimeoutMs)*time.Millisecond)
	defer cancelNav()

	if err := src.Navigate(navCtx, cfg.TargetURL); err != nil {
		logrus.Fatalf("Failed to navigate: %v", err)
	}

	tabs.SetLoadedInBackground(src.TargetID(), src.LoadedHidden())

	nav := src.Navigation()
	sess.Init(nav)

	logrus.Infof("Observing %s (navigationStart=%.0f)", nav.Location, nav.Start)

	// Start progress logger
	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logrus.Infof("Received signal: %v", sig)

	close(stopProgress)

	logrus.Info("Initiating graceful shutdown...")
	logrus.Info("Step 1/5: Stopping aggregation...")

	sess.Close()

	logrus.Info("Step 2/5: Flushing scoreboard to database...")

	sess.Flush()

	logrus.Info("Step 3/5: Closing browser...")

	cancelTab()

	logrus.Info("Step 4/5: Draining badge channel...")

	if responder != nil {
		if err := responder.Stop(); err != nil {
			logrus.Warnf("Failed to stop badge responder: %v", err)
		}
	}
	if conn != nil {
		if err := conn.Drain(); err != nil {
			logrus.Warnf("Failed to drain badge connection: %v", err)
		}
	}

	logrus.Info("Step 5/5: Stopping telemetry server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := telemetrySrv.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("Telemetry server shutdown failed: %v", err)
	}

	logrus.Info("Final stats: " + tracker.LogProgress())
	logrus.Info("Graceful shutdown complete. Goodbye!")
}
