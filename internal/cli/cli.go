// Package cli is the ambient CLI layer (SPEC_FULL.md §4.11): it parses
// flags and config, resolves hosts into dockerx.Clients, wires the App
// State Machine's worker hooks to the Host Managers/Log Stream
// Worker/Action Executor, and runs the Bubble Tea program. Grounded on
// siftail's internal/cli/cli.go shape (flag parsing + a Run entry point
// that wires readers into the program before calling program.Run), using
// cobra instead of the stdlib flag package per the pack's broad cobra
// adoption.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/siftail/dtop/internal/action"
	"github.com/siftail/dtop/internal/config"
	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
	"github.com/siftail/dtop/internal/hostmgr"
	"github.com/siftail/dtop/internal/hostspec"
	"github.com/siftail/dtop/internal/logging"
	"github.com/siftail/dtop/internal/logstream"
	"github.com/siftail/dtop/internal/persist"
	"github.com/siftail/dtop/internal/tui"
)

// version is a static build identifier; dtop has no build-time injection
// step (self-update and packaging are out of scope per spec.md §1).
const version = "0.1.0"

// flags holds the dashboard command's own flag values before they're
// merged with config (spec.md §6).
type flags struct {
	hosts   []string
	filters []string
	all     bool
	icons   string
	sort    string
	logFile string
}

// NewRootCommand builds the `dtop` / `dtop update` command tree.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:          "dtop",
		Short:        "terminal dashboard for Docker containers across one or more daemons",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), f)
		},
	}
	root.Flags().StringArrayVarP(&f.hosts, "host", "H", nil, "Docker host (local|tcp://host:port|tls://host:port|ssh://[user@]host[:port]), repeatable")
	root.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "listing filter key=value, repeatable")
	root.Flags().BoolVarP(&f.all, "all", "a", false, "show all containers, not just running ones (one-way enable)")
	root.Flags().StringVarP(&f.icons, "icons", "i", "", "icon set: unicode|nerd")
	root.Flags().StringVarP(&f.sort, "sort", "s", "", "sort field: uptime|name|cpu|memory (synonyms u|n|c|m)")
	root.Flags().StringVar(&f.logFile, "log-file", "", "path for structured diagnostics (default $XDG_STATE_HOME/dtop/dtop.log)")

	var showVersion bool
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	origRunE := root.RunE
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println("dtop version " + version)
			return nil
		}
		return origRunE(cmd, args)
	}

	root.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "self-update dtop",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("update: not implemented in this build")
			return nil
		},
	})

	return root
}

// Main is the process entry point cmd/dtop/main.go calls. It returns the
// process exit code (spec.md §6: 0 normal, non-zero on fatal startup
// error; per-host failures are non-fatal and never reach here).
func Main(args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dtop:", err)
		return 1
	}
	return 0
}

func runDashboard(ctx context.Context, f *flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	resolved := config.Merge(cfg, f.hosts, f.filters, f.all, f.icons, f.sort)

	logger, err := logging.New(f.logFile)
	if err != nil {
		return fmt.Errorf("cli: open log file: %w", err)
	}

	sortField, _ := core.ParseSortField(resolved.Sort)
	sortState := core.SortState{Field: sortField, Direction: core.DefaultDirection(sortField)}

	store, err := persist.NewStore()
	if err != nil {
		return fmt.Errorf("cli: settings store: %w", err)
	}
	settings, _ := store.Load()
	theme := settings.Theme
	if theme == "" {
		theme = "dark"
	}

	suppressDozzle := os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != ""

	specs := make([]hostspec.Spec, 0, len(resolved.HostSpecs))
	for _, h := range resolved.HostSpecs {
		s, err := hostspec.Parse(h.Host)
		if err != nil {
			return fmt.Errorf("cli: %w", err)
		}
		s.DozzleURL = h.Dozzle
		if suppressDozzle {
			s.DozzleURL = ""
		}
		for _, raw := range h.Filter {
			kv, ok := parseFilterKV(raw)
			if !ok {
				return fmt.Errorf("cli: invalid filter %q (want key=value)", raw)
			}
			s.Filters = append(s.Filters, kv)
		}
		specs = append(specs, s)
	}
	if err := hostspec.Dedup(specs); err != nil {
		return fmt.Errorf("cli: %w", err)
	}

	clients := make(map[core.HostId]dockerx.Client, len(specs))
	events := make(chan core.AppEvent, 256)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, s := range specs {
		client, err := hostspec.NewClient(s, hostspec.ResolveCertDir(s, ""), "", "")
		if err != nil {
			logging.Diagnostic(logger, string(s.HostId()), "config_error", err.Error())
			continue
		}
		clients[s.HostId()] = client

		listFilters := hostspec.FiltersMap(s.Filters)
		eventFilters, dropped := hostspec.EventFilters(s.Filters)
		mgr := hostmgr.New(s.HostId(), client, listFilters, resolved.All, eventFilters, dropped, s.DozzleURL, events)
		go mgr.Run(runCtx)
	}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	state := core.NewAppState(resolved.All, sortState)
	state.SpawnLogWorker = func(key core.ContainerKey) context.CancelFunc {
		client, ok := clients[key.HostId]
		if !ok {
			return func() {}
		}
		return logstream.Spawn(runCtx, client, key, key.ContainerId, events)
	}
	state.ExecuteAction = func(key core.ContainerKey, act core.ContainerAction) {
		client, ok := clients[key.HostId]
		if !ok {
			return
		}
		go action.New(client).Run(runCtx, key, key.ContainerId, act, events)
	}

	model := tui.New(state, events, store, theme, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	cancel()
	return err
}

func parseFilterKV(raw string) (hostspec.FilterKV, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return hostspec.FilterKV{Key: raw[:i], Value: raw[i+1:]}, true
		}
	}
	return hostspec.FilterKV{}, false
}
