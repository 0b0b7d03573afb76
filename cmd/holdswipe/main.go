package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/holdswipe/internal/config"
	"github.com/1broseidon/holdswipe/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemonCommand(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "workspaces":
		os.Exit(runWorkspaces(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "step":
		os.Exit(runStep(os.Args[2:]))
	case "volume":
		os.Exit(runVolume(os.Args[2:]))
	case "refresh":
		os.Exit(runSimple("refresh", "Re-read workspaces and focus from the manager.", func(c *ipc.Client) error { return c.Refresh() }, os.Args[2:]))
	case "reload":
		os.Exit(runSimple("reload", "Reload the daemon configuration.", func(c *ipc.Client) error { return c.Reload() }, os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: holdswipe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the holdswipe daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and gesture status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  workspaces          List workspaces known to the daemon")
	fmt.Fprintln(w, "  switch <id>         Switch to a workspace")
	fmt.Fprintln(w, "  step next|prev      Step to the neighbouring workspace")
	fmt.Fprintln(w, "  volume <step>       Change output volume by step percent (e.g. +5, -5)")
	fmt.Fprintln(w, "  refresh             Re-read workspaces from the manager")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'holdswipe <command> --help' for command-specific options.")
}

func runDaemonCommand(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/holdswipe/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Grab the trigger button and run the gesture daemon in the foreground.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}
	runDaemon(*path)
	return 0
}

func runWorkspaces(args []string) int {
	fs := flag.NewFlagSet("workspaces", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe workspaces [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List workspaces in manager order. The focused one is marked with '*'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "workspaces takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().ListWorkspaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut || !stdoutIsTerminal() {
		return printJSON(os.Stdout, data)
	}
	for _, id := range data.Workspaces {
		marker := " "
		if id == data.Current {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, id)
	}
	return 0
}

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe switch <workspace>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fmt.Fprintln(os.Stderr, "switch requires exactly one workspace")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().SetWorkspace(strings.TrimSpace(fs.Arg(0))); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStep(args []string) int {
	fs := flag.NewFlagSet("step", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	noWrap := fs.Bool("no-wrap", false, "Stop at the first/last workspace instead of wrapping")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe step [--no-wrap] next|prev")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "step requires a direction")
		fs.Usage()
		return 2
	}
	dir, err := ipc.ParseDirection(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().StepWorkspace(dir, !*noWrap); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runVolume(args []string) int {
	fs := flag.NewFlagSet("volume", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: holdswipe volume <step>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Change output volume by step percent and print the new level.")
		fmt.Fprintln(os.Stderr, "Use 0 to print the current level.")
	}
	// Negative steps look like flags; parse them as positional arguments.
	if len(args) == 1 && isSignedInt(args[0]) {
		return adjustVolume(args[0])
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "volume requires a step")
		fs.Usage()
		return 2
	}
	return adjustVolume(fs.Arg(0))
}

func adjustVolume(arg string) int {
	step, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid volume step %q\n", arg)
		return 2
	}
	percent, err := ipc.NewClient().AdjustVolume(step)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d%%\n", percent)
	return 0
}

func isSignedInt(s string) bool {
	_, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	return err == nil
}

func runSimple(name, summary string, call func(c *ipc.Client) error, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: holdswipe %s\n\n%s\n", name, summary)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  holdswipe config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  holdswipe config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/holdswipe/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%s)\n", describeFile(res.File))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/holdswipe/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func describeFile(path string) string {
	if path == "" {
		return "no config file, using defaults"
	}
	return path
}
