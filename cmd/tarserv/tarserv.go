package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aurora-is-near/tarlite/src/deliver"
)

type config struct {
	Listen     string `yaml:"listen"`
	ArchiveDir string `yaml:"archive_dir"`
	Prefix     string `yaml:"prefix"`
	LogLevel   string `yaml:"log_level"`
}

func defaultConfig() *config {
	return &config{
		Listen:     "127.0.0.1:18123",
		ArchiveDir: "/var/snapshots/",
		Prefix:     "/",
		LogLevel:   "info",
	}
}

func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	var (
		configFile string
		listen     string
		archiveDir string
		prefix     string
	)
	flaggy.SetName("tarserv")
	flaggy.SetDescription("Serve tar archives and their members over HTTP")
	flaggy.String(&configFile, "c", "config", "YAML configuration file")
	flaggy.String(&listen, "l", "listen", "IP:Port to listen on")
	flaggy.String(&archiveDir, "d", "dir", "directory containing tar archives")
	flaggy.String(&prefix, "p", "prefix", "request path prefix")
	flaggy.Parse()

	cfg, err := loadConfig(configFile)
	if err != nil {
		logrus.WithError(err).Fatal("load configuration")
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if archiveDir != "" {
		cfg.ArchiveDir = archiveDir
	}
	if prefix != "" {
		cfg.Prefix = prefix
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("parse log level")
	}
	logrus.SetLevel(level)
	log := logrus.WithField("listen", cfg.Listen)

	h := &deliver.TarHandler{
		ArchiveDirectory: cfg.ArchiveDir,
		Log:              logrus.WithField("component", "deliver"),
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Prefix, http.StripPrefix(cfg.Prefix, h))
	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		log.WithError(err).Fatal("server failed")
	}
	log.Info("stopped")
}
