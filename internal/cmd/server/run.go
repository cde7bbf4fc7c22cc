package server

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/RealKC/bd-homework/internal/config"
	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/httpapi"
	"github.com/RealKC/bd-homework/internal/logging"
	"github.com/RealKC/bd-homework/internal/version"
)

type Options struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool

	DBPath   string
	BindAddr string
	Port     int
}

func Run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var opt Options
	var showVersion bool
	fs.StringVar(&opt.ConfigPath, "config", "", "path to biblioteca.yaml (when set, other flags are ignored)")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug|info|warning|error")
	fs.BoolVar(&opt.LogJSON, "log-json", false, "emit JSON logs")
	fs.StringVar(&opt.DBPath, "db", "./data.sqlite", "sqlite database path")
	fs.StringVar(&opt.BindAddr, "bind", "0.0.0.0", "bind address")
	fs.IntVar(&opt.Port, "port", 3000, "HTTP port")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if showVersion {
		fmt.Printf("biblioteca server %s\n", version.Version)
		return nil
	}

	if opt.ConfigPath != "" {
		c, err := config.Load(opt.ConfigPath)
		if err != nil {
			return err
		}
		base := filepath.Dir(opt.ConfigPath)
		lg, _, err := logging.New(logging.Options{Level: c.Log.Level, JSON: c.Log.JSON, DefaultSlog: true})
		if err != nil {
			return err
		}
		return serve(context.Background(), Options{
			DBPath:   resolvePath(base, c.DB.Path),
			BindAddr: c.HTTP.Bind,
			Port:     c.HTTP.Port,
		}, lg)
	}

	lg, _, err := logging.New(logging.Options{Level: opt.LogLevel, JSON: opt.LogJSON, DefaultSlog: true})
	if err != nil {
		return err
	}
	return serve(context.Background(), opt, lg)
}

func serve(ctx context.Context, opt Options, lg *slog.Logger) error {
	d, err := db.Open(ctx, opt.DBPath)
	if err != nil {
		return err
	}
	defer d.Close()

	srv := &httpapi.Server{
		DB:       d,
		Logger:   lg,
		BindAddr: opt.BindAddr,
		Port:     opt.Port,
	}
	return srv.ListenAndServe()
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
