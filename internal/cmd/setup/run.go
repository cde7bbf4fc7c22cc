package setup

import (
	"context"
	"flag"

	isetup "github.com/RealKC/bd-homework/internal/setup"
)

type Options struct {
	DBPath string
}

func Run(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	var opt Options
	fs.StringVar(&opt.DBPath, "db", "./data.sqlite", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return isetup.Run(context.Background(), isetup.Options{
		DBPath: opt.DBPath,
	})
}
