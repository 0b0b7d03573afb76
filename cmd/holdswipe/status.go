package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/holdswipe/internal/ipc"
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut || !stdoutIsTerminal() {
		return printJSON(os.Stdout, status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "daemon_running:\t%v\n", s.DaemonRunning)
	fmt.Fprintf(tw, "uptime_seconds:\t%d\n", s.UptimeSeconds)
	fmt.Fprintf(tw, "trigger_button:\t%d\n", s.TriggerButton)
	hook := "installed"
	if !s.HookInstalled {
		hook = "pending"
		if s.HookError != "" {
			hook += " (" + s.HookError + ")"
		}
	}
	fmt.Fprintf(tw, "input_hook:\t%s\n", hook)
	fmt.Fprintf(tw, "state:\t%s\n", s.State)
	if s.SessionID != "" {
		fmt.Fprintf(tw, "zone:\t%s\n", s.Zone)
		fmt.Fprintf(tw, "session:\t%s (held %dms)\n", s.SessionID, s.HeldForMs)
		if s.Target != "" {
			fmt.Fprintf(tw, "target:\t%s\n", s.Target)
		}
	}
	fmt.Fprintf(tw, "workspace:\t%s\n", s.CurrentWorkspace)
	fmt.Fprintf(tw, "workspaces:\t%s\n", strings.Join(s.Workspaces, " "))
}
