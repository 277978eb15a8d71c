// Command grass-server runs a GRASS server: it reads grass.conf from the
// current directory (or the path named by --conf), binds the configured
// port, and serves sessions until killed.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/gonzalop/grass/internal/grass/config"
	"github.com/gonzalop/grass/internal/grass/server"
)

func main() {
	app := orpheus.New("grass-server").
		SetDescription("GRASS remote shell server").
		SetVersion("0.1.0")

	serve := orpheus.NewCommand("serve", "read grass.conf and start serving").
		AddFlag("conf", "c", "grass.conf", "path to the config file").
		SetHandler(runServe)

	app.AddCommand(serve)
	app.SetDefaultCommand("serve")

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if oe, ok := err.(*orpheus.OrpheusError); ok {
			os.Exit(oe.ExitCode())
		}
		os.Exit(1)
	}
}

func runServe(ctx *orpheus.Context) error {
	confPath := ctx.GetFlagString("conf")
	wd, err := os.Getwd()
	if err != nil {
		return orpheus.ExecutionError("serve", "could not determine working directory: "+err.Error())
	}

	cfg, err := config.Load(confPath, wd)
	if err != nil {
		return orpheus.ValidationError("serve", "config error: "+err.Error())
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	addr := net.JoinHostPort("", strconv.Itoa(int(cfg.Port)))

	srv, err := server.New(addr, cfg, server.WithLogger(logger))
	if err != nil {
		return orpheus.ExecutionError("serve", "could not open base directory: "+err.Error())
	}

	if err := srv.ListenAndServe(); err != nil {
		return orpheus.ExecutionError("serve", "server exited: "+err.Error())
	}
	return nil
}
