package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/matrixkb/controller"
	"github.com/Alia5/matrixkb/indicator"
	"github.com/Alia5/matrixkb/internal/log"
	"github.com/Alia5/matrixkb/internal/server/api"
	"github.com/Alia5/matrixkb/internal/server/api/handler"
	"github.com/Alia5/matrixkb/internal/util"
	"github.com/Alia5/matrixkb/link"
	"github.com/Alia5/matrixkb/matrix"
)

// Version is reported by the ping route; set with -ldflags at build time.
var Version = "dev"

// LinkConfig selects where the host end of the serial link lives.
type LinkConfig struct {
	Device   string `help:"Serial device the host is on; empty serves the link over the API 'link' stream" env:"MATRIXKB_LINK_DEVICE"`
	Baud     int    `help:"Serial baud rate" default:"9600" env:"MATRIXKB_LINK_BAUD"`
	RxBuffer int    `help:"Inbound command bytes buffered before the reader blocks" default:"64" env:"MATRIXKB_LINK_RX_BUFFER"`
}

type Run struct {
	Controller      controller.Config `embed:"" prefix:"controller."`
	Link            LinkConfig        `embed:"" prefix:"link."`
	ApiServerConfig api.ServerConfig  `embed:"" prefix:"api."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger)
}

// Start runs the keyboard until ctx is done.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	mx := matrix.New()
	panel := indicator.NewPanel(logger, nil)
	port := link.NewPort(r.Link.RxBuffer, logger, rawLogger)
	ctrl, err := controller.New(r.Controller, mx, port, panel, logger)
	if err != nil {
		return err
	}

	var apiSrv *api.Server
	if r.ApiServerConfig.Addr != "" {
		if r.ApiServerConfig.Password == "" && !r.ApiServerConfig.NoAuth {
			pwd, err := loadOrCreateKey(logger)
			if err != nil {
				return err
			}
			r.ApiServerConfig.Password = pwd
		}
		apiSrv = api.New(r.ApiServerConfig, logger)
		rt := apiSrv.Router()
		rt.Register("ping", handler.Ping(Version))
		rt.Register("key/{code}/down", handler.KeyDown(mx))
		rt.Register("key/{code}/up", handler.KeyUp(mx))
		rt.Register("matrix/list", handler.MatrixList(mx))
		rt.Register("leds", handler.LEDs(panel))
		rt.Register("state", handler.State(ctrl, port))
		if r.Link.Device == "" {
			rt.RegisterStream("link", api.LinkStreamHandler(port))
		}
		if err := apiSrv.Start(); err != nil {
			logger.Error("failed to start API server", "error", err)
			util.WaitIfRunFromGUI()
			return err
		}
		defer apiSrv.Close()
		util.HideConsoleIfRunFromGUI()
	} else {
		logger.Warn("API disabled; keys can only be driven by a real matrix")
	}

	var tty *os.File
	if r.Link.Device != "" {
		if tty, err = link.OpenTTY(r.Link.Device, r.Link.Baud); err != nil {
			return fmt.Errorf("open link device: %w", err)
		}
		logger.Info("Serial link attached", "device", r.Link.Device, "baud", r.Link.Baud)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	if tty != nil {
		g.Go(func() error {
			err := port.Attach(gctx, tty)
			if err == nil {
				return fmt.Errorf("link device %s closed", r.Link.Device)
			}
			return err
		})
	}

	logger.Info("matrixkb running", "api", r.ApiServerConfig.Addr, "link", r.Link.Device)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("matrixkb stopped")
	return nil
}
