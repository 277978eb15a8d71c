// Command grass-client connects to a GRASS server and drives its control
// channel from stdin/stdout, or from a pair of files when given.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/gonzalop/grass/internal/grass/client"
)

func main() {
	app := orpheus.New("grass-client").
		SetDescription("GRASS remote shell client").
		SetVersion("0.1.0")

	connect := orpheus.NewCommand("connect", "connect to a GRASS server").
		SetUsage("connect <host> <port> [<input_file> <output_file>]").
		SetHandler(runConnect)

	app.AddCommand(connect)
	app.SetDefaultCommand("connect")

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if oe, ok := err.(*orpheus.OrpheusError); ok {
			os.Exit(oe.ExitCode())
		}
		os.Exit(1)
	}
}

func runConnect(ctx *orpheus.Context) error {
	if ctx.ArgCount() != 2 && ctx.ArgCount() != 4 {
		return orpheus.ValidationError("connect", "usage: connect <host> <port> [<input_file> <output_file>]")
	}

	host := ctx.GetArg(0)
	port, err := strconv.Atoi(ctx.GetArg(1))
	if err != nil {
		return orpheus.ValidationError("connect", "invalid port: "+ctx.GetArg(1))
	}

	in, out, cleanup, err := ioStreams(ctx)
	if err != nil {
		return orpheus.ExecutionError("connect", err.Error())
	}
	defer cleanup()

	c, err := client.Dial(host, port)
	if err != nil {
		return orpheus.ExecutionError("connect", "could not connect: "+err.Error())
	}
	defer c.Close()

	prompt := "> "
	if ctx.ArgCount() == 4 {
		prompt = ""
	}

	repl := client.NewREPL(c, in, out, prompt)
	if err := repl.Run(); err != nil {
		return orpheus.ExecutionError("connect", err.Error())
	}
	return nil
}

func ioStreams(ctx *orpheus.Context) (in *os.File, out *os.File, cleanup func(), err error) {
	if ctx.ArgCount() == 2 {
		return os.Stdin, os.Stdout, func() {}, nil
	}

	inFile, err := os.Open(ctx.GetArg(2))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not open input file: %w", err)
	}
	outFile, err := os.Create(ctx.GetArg(3))
	if err != nil {
		inFile.Close()
		return nil, nil, nil, fmt.Errorf("could not create output file: %w", err)
	}
	return inFile, outFile, func() { inFile.Close(); outFile.Close() }, nil
}
