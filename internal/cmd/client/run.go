package client

import (
	"flag"

	apiclient "github.com/RealKC/bd-homework/internal/client"
	"github.com/RealKC/bd-homework/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Addr string
}

func Run(args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	var opt Options
	fs.StringVar(&opt.Addr, "addr", "http://127.0.0.1:3000", "server address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := apiclient.New(apiclient.Options{Addr: opt.Addr})
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui.New(c, opt.Addr), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
