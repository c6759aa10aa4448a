package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spotbeam/spotbeam/internal/app"
	"github.com/spotbeam/spotbeam/internal/config"
	"github.com/spotbeam/spotbeam/internal/database"
	"github.com/spotbeam/spotbeam/internal/instance"
	"github.com/spotbeam/spotbeam/internal/ipc"
	"github.com/spotbeam/spotbeam/internal/logging"
	"github.com/spotbeam/spotbeam/internal/settings"
	"github.com/spotbeam/spotbeam/pkg/capture"
	"github.com/spotbeam/spotbeam/pkg/desktop"
	"github.com/spotbeam/spotbeam/version"
)

const appName = "spotbeam"

// Exit codes form part of the CLI contract; scripts depend on them.
const (
	exitOK             = 0
	exitFailure        = 1
	exitAlreadyRunning = 42
	exitNoInstance     = 43
	exitEmptyCommand   = 44
)

type options struct {
	showHelp        bool
	showFullHelp    bool
	showVersion     bool
	showFullVersion bool
	configFile      string
	command         string
	hasCommand      bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage(false)
		return exitFailure
	}

	if opts.showHelp || opts.showFullHelp {
		printUsage(opts.showFullHelp)
		return exitOK
	}

	if opts.showVersion || opts.showFullVersion {
		printVersion(os.Stdout, opts.showFullVersion)
		return exitOK
	}

	if opts.hasCommand && opts.command == "" {
		fmt.Fprintln(os.Stderr, "Command cannot be an empty string.")
		return exitEmptyCommand
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return exitFailure
	}

	guard := instance.New(cfg.Daemon.PIDFile)
	acquired, _, err := guard.TryToRun()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check for a running instance: %v\n", err)
		return exitFailure
	}

	if !acquired {
		if opts.command != "" {
			return forwardCommand(cfg, opts.command)
		}
		fmt.Fprintln(os.Stderr, "Another application instance is already running. Exiting.")
		return exitAlreadyRunning
	}

	if opts.command != "" {
		// No other instance running, but the command option was used.
		guard.Release()
		fmt.Fprintf(os.Stderr, "Cannot send command '%s' - no running application instance found.\n", opts.command)
		return exitNoInstance
	}

	defer guard.Release()
	return runInstance(cfg)
}

// forwardCommand sends a command to the already-running instance.
func forwardCommand(cfg *config.Config, command string) int {
	client := ipc.NewClient(cfg.IPC.SocketPath, cfg.IPC.Timeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.IPC.Timeout)
	defer cancel()

	if err := client.SendCommand(ctx, command); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send command '%s': %v\n", command, err)
		return exitFailure
	}
	return exitOK
}

// runInstance starts the daemon: settings store, capture pipeline and
// the IPC server, shut down on SIGINT/SIGTERM or the quit command.
func runInstance(cfg *config.Config) int {
	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		LogFile: cfg.Log.File,
	})

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return exitFailure
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		return exitFailure
	}

	repo := database.NewRepository(db)
	store := settings.NewStore(repo, logging.Category(logger, "settings"))

	d := desktop.Detect()
	capturer := capture.New(d, cfg.Capture.TempDir, logging.Category(logger, "capture"))

	a := app.New(cfg, store, repo, d, capturer, logging.Category(logger, "app"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("received shutdown signal")
		cancel()
	}()

	logger.Info().Str("version", version.String()).Msg("starting spotbeam")
	logger.Debug().Msg(cfg.String())

	if err := a.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("instance error")
		return exitFailure
	}

	logger.Info().Msg("spotbeam stopped")
	return exitOK
}

// parseArgs handles the flag surface: -v/--version, -f/--fullversion,
// -h/--help, --help-all, --cfg FILE and -c/--command CMD.
func parseArgs(args []string) (*options, error) {
	opts := &options{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			opts.showHelp = true
		case arg == "--help-all":
			opts.showFullHelp = true
		case arg == "-v" || arg == "--version":
			opts.showVersion = true
		case arg == "-f" || arg == "--fullversion":
			opts.showFullVersion = true
		case arg == "--cfg":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--cfg requires a file argument")
			}
			i++
			opts.configFile = args[i]
		case strings.HasPrefix(arg, "--cfg="):
			opts.configFile = strings.TrimPrefix(arg, "--cfg=")
		case arg == "-c" || arg == "--command":
			opts.hasCommand = true
			if i+1 < len(args) {
				i++
				opts.command = args[i]
			}
		case strings.HasPrefix(arg, "--command="):
			opts.hasCommand = true
			opts.command = strings.TrimPrefix(arg, "--command=")
		case strings.HasPrefix(arg, "-c="):
			opts.hasCommand = true
			opts.command = strings.TrimPrefix(arg, "-c=")
		default:
			return nil, fmt.Errorf("unknown option: %s", arg)
		}
	}

	return opts, nil
}

func printUsage(full bool) {
	fmt.Printf("%s %s\n\n", appName, version.String())
	fmt.Printf("Usage: %s [option]\n\n", appName)
	fmt.Print(`<Options>
  -h, --help             Show command line usage.
  --help-all             Show complete command line usage.
  -v, --version          Print application version.
  -f, --fullversion      Print full version information.
  --cfg FILE             Set custom config file.
  -c COMMAND|PROPERTY    Send command to a running instance.

<Commands>
  spot=[on|off]          Turn spotlight on/off.
  settings=[show|hide]   Show/hide preferences dialog.
  quit                   Quit the running instance.
`)

	if !full {
		return
	}

	fmt.Print("\n<Properties>\n")
	for _, prop := range settings.Registry() {
		fmt.Printf("  %s=[%s]   %s\n", prop.Key, prop.Type, prop.RangeString())
	}
}

func printVersion(w io.Writer, full bool) {
	if full || !version.IsReleaseBuild() {
		fmt.Fprintf(w, "%s %s\n", appName, version.Full())
		return
	}
	fmt.Fprintf(w, "%s %s\n", appName, version.String())
	// A modified build is flagged even on release branches.
	if version.Dirty != "" {
		fmt.Fprintf(w, "  - dirty-flag: %s\n", version.Dirty)
	}
}
