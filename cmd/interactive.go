package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dakoina/CalibreBookGrid/internal/prefs"
	"github.com/Dakoina/CalibreBookGrid/internal/server"
	"github.com/spf13/viper"
)

// BrowseCmd represents the browse command
type BrowseCmd struct{}

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// SizeCmd represents the size command
type SizeCmd struct {
	Action string `arg:"" optional:"" enum:"show,increase,decrease" default:"show" help:"show, increase or decrease"`
}

func (b *BrowseCmd) Run() error {
	store := loadLibrary(context.Background())
	return runBrowser(store)
}

func (s *ServeCmd) Run() error {
	addr := s.Addr
	if addr == "" {
		addr = viper.GetString("server.addr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := loadLibrary(ctx)
	thumb, closeFn := openThumbSize()
	defer closeFn()

	return runServer(ctx, addr, server.NewHandler(store, thumb))
}

func (s *SizeCmd) Run() error {
	thumb, closeFn := openThumbSize()
	defer closeFn()

	switch s.Action {
	case "increase":
		thumb.Increase()
	case "decrease":
		thumb.Decrease()
	}

	fmt.Fprintf(stdout, "Thumbnail size: %dpx (step %d of %d)\n", thumb.Size(), thumb.Index()+1, len(prefs.Steps))
	return nil
}
