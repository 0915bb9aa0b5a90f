package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sensor-receiver.klederson.com/internal/api"
	"sensor-receiver.klederson.com/internal/app"
	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/dump"
	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/metrics"
	"sensor-receiver.klederson.com/internal/receiver"
)

var v = viper.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "sensor-receiver",
		Short: "Sensor Receiver - BLE sensor gateway with a snapshot ring buffer",
		Long: `Sensor Receiver listens for advertisements from five remote sensor nodes,
merges them into a current record and captures that record into a fixed-size
ring buffer at a regular interval. Buffered snapshots are written out as
serial lines to stdout, a file or an MQTT topic.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo flag for simulated sensors without Bluetooth hardware.`,
		RunE:         runMonitor,
		SilenceUsage: true,
	}

	if err := config.BindFlags(rootCmd.PersistentFlags(), v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:          "dump",
			Short:        "Run headless and write the buffer to the sink every dump interval",
			RunE:         runDump,
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:   "strings",
			Short: "Print the display string table",
			RunE:  runStrings,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is what both the monitor and the dump command run on.
type session struct {
	cfg       *config.Config
	log       *logrus.Logger
	metrics   *metrics.Metrics
	collector *receiver.Collector
	client    mqtt.Client
	server    *http.Server
	logFile   *os.File
}

func setup(interactive bool) (*session, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	rt := &session{cfg: cfg, log: logrus.New(), metrics: metrics.New()}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	rt.log.SetLevel(level)
	rt.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "opening log file")
		}
		rt.logFile = f
		out = f
	case interactive:
		// The terminal belongs to the TUI
		out = io.Discard
	}

	if cfg.Sink == config.SinkMQTT || cfg.LogMQTT {
		client, err := dump.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.client = client
	}
	if cfg.LogMQTT {
		out = io.MultiWriter(out, dump.NewMQTTWriter(rt.client, "logs/"+config.ConfigName, false))
	}
	rt.log.SetOutput(out)

	rt.collector = receiver.NewCollector(cfg.Capacity, cfg.Overflow, rt.log, rt.metrics)

	if cfg.HTTPAddr != "" {
		rt.server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(rt.collector, rt.metrics, rt.log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			rt.log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
			if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.log.WithError(err).Error("HTTP server stopped")
			}
		}()
	}

	rt.log.WithFields(logrus.Fields{
		"capacity": cfg.Capacity,
		"overflow": cfg.Overflow,
		"interval": cfg.CaptureInterval,
		"sink":     cfg.Sink,
		"demo":     cfg.Demo,
	}).Info("Receiver configured")
	return rt, nil
}

func (rt *session) source() receiver.Source {
	if rt.cfg.Demo {
		return receiver.NewMockSource(config.DemoPacketInterval, rt.log)
	}
	return receiver.NewBLEScanner(rt.cfg.Adapter, rt.log, rt.metrics)
}

func (rt *session) close() {
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = rt.server.Shutdown(ctx)
		cancel()
	}
	if rt.client != nil {
		rt.client.Disconnect(250)
	}
	if rt.logFile != nil {
		_ = rt.logFile.Close()
	}
}

func printPermissionHelp(err error) {
	fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
	fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
	fmt.Fprintln(os.Stderr, "Try one of:")
	fmt.Fprintln(os.Stderr, "  sudo ./sensor-receiver")
	fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./sensor-receiver")
	fmt.Fprintln(os.Stderr, "  ./sensor-receiver --demo    (simulated sensors, no hardware needed)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	rt, err := setup(true)
	if err != nil {
		return err
	}
	defer rt.close()

	// Lines dumped to stdout while the TUI owns the screen are printed on exit.
	var pending bytes.Buffer
	var sink io.Writer = &pending
	if rt.cfg.Sink != config.SinkStdout {
		s, err := dump.Open(rt.cfg, rt.client)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				rt.log.WithError(err).Warn("Closing sink")
			}
		}()
		sink = s
	}

	writer := dump.NewWriter(sink, rt.metrics)
	model := app.New(rt.cfg, rt.collector, rt.source(), writer, rt.log)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(30),
	)

	// Start the source with reference to the tea program
	if err := model.StartSources(p); err != nil {
		if !rt.cfg.Demo {
			printPermissionHelp(err)
		}
		return err
	}

	_, err = p.Run()
	model.StopSources()
	// A dump started just before quitting may still be writing
	writer.WithLock(func() {
		_, _ = pending.WriteTo(os.Stdout)
	})
	return err
}

func runDump(cmd *cobra.Command, args []string) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.close()

	sink, err := dump.Open(rt.cfg, rt.client)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			rt.log.WithError(err).Warn("Closing sink")
		}
	}()
	w := dump.NewWriter(sink, rt.metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := rt.source()
	if err := src.Start(rt.collector.Apply); err != nil {
		if !rt.cfg.Demo {
			printPermissionHelp(err)
		}
		return err
	}
	defer src.Stop()

	go rt.collector.Run(ctx, rt.cfg.CaptureInterval)

	flush := func() {
		n, err := dump.Flush(w, rt.collector, rt.cfg.Drain)
		entry := rt.log.WithFields(logrus.Fields{"lines": n, "occupied": rt.collector.Len()})
		if err != nil {
			entry.WithError(err).Error("Dump failed")
			return
		}
		entry.Debug("Buffer dumped")
	}

	ticker := time.NewTicker(rt.cfg.DumpInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flush()
			rt.log.Info("Shutting down")
			return nil
		case <-ticker.C:
			flush()
		}
	}
}

func runStrings(cmd *cobra.Command, args []string) error {
	langs := i18n.Languages()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-4s", "ID")
	for _, l := range langs {
		fmt.Fprintf(out, "  %-36s", l)
	}
	fmt.Fprintln(out)

	for _, id := range i18n.IDs() {
		fmt.Fprintf(out, "%-4d", id)
		for _, l := range langs {
			fmt.Fprintf(out, "  %-36q", i18n.Lookup(l, id))
		}
		fmt.Fprintln(out)
	}
	return nil
}
