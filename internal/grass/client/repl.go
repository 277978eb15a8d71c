package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// REPL drives a Client from an input stream of command lines, writing
// responses to an output stream. It is intentionally not quote-aware — the
// original distinguished the client's own simple space-split input reader
// from the server's quote-aware command tokenizer, and callers that need
// quoting (grep patterns with embedded spaces) type the quotes themselves;
// they pass through untouched to the wire line the server does parse.
type REPL struct {
	client *Client
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewREPL builds a REPL reading from in and writing to out. prompt is
// printed before each read whenever it is non-empty; pass "" to
// suppress it (the four-argument CLI form redirects both streams to
// files, where a prompt would just be noise).
func NewREPL(c *Client, in io.Reader, out io.Writer, prompt string) *REPL {
	return &REPL{client: c, in: bufio.NewReader(in), out: out, prompt: prompt}
}

// Run reads commands until EOF or an "exit" command, dispatching GET/PUT
// specially and everything else as a plain send/receive.
func (r *REPL) Run() error {
	for {
		if r.prompt != "" {
			fmt.Fprint(r.out, r.prompt)
		}
		line, err := r.in.ReadString('\n')
		if err != nil && line == "" {
			return nil
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		verb := fields[0]

		if verb == "exit" {
			r.client.SendLine(line)
			return nil
		}

		if verb == "get" && len(fields) == 2 {
			r.runGet(fields[1])
			continue
		}
		if verb == "put" && len(fields) == 2 {
			r.runPut(fields[1])
			continue
		}

		res, err := r.client.SendLine(line)
		if err != nil {
			fmt.Fprintln(r.out, "Error: "+err.Error())
			continue
		}
		if res.Raw != "OK" {
			fmt.Fprintln(r.out, res.Raw)
		}
	}
}

func (r *REPL) runGet(remote string) {
	local := remote
	f, err := os.Create(local)
	if err != nil {
		fmt.Fprintln(r.out, "Error: could not create local file: "+err.Error())
		return
	}
	defer f.Close()

	res, err := r.client.Get(remote, f)
	if err != nil {
		fmt.Fprintln(r.out, "Error: "+err.Error())
		return
	}
	if !res.IsGetReply {
		fmt.Fprintln(r.out, res.Raw)
	}
}

func (r *REPL) runPut(local string) {
	f, err := os.Open(local)
	if err != nil {
		fmt.Fprintln(r.out, "Error: could not open local file: "+err.Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintln(r.out, "Error: could not stat local file: "+err.Error())
		return
	}

	res, err := r.client.Put(local, info.Size(), f)
	if err != nil {
		fmt.Fprintln(r.out, "Error: "+err.Error())
		return
	}
	if !res.IsPutReply {
		fmt.Fprintln(r.out, res.Raw)
	}
}
