package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gatehouse-sh/gatehouse/internal/approval"
	"github.com/gatehouse-sh/gatehouse/internal/config"
	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/extension"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/host"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
	"github.com/gatehouse-sh/gatehouse/internal/uptime"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [session-name]",
	Short: "Run an interactive playground session",
	Long: `Start (or resume) a session and drive it from a line-oriented prompt.

Plain lines are recorded as input. Slash commands exercise the rest of
the host:

  /tool <name> [json]   dispatch a tool call through the approval gate
  /fork [entry-id]      fork the active session at an entry
  /goto <entry-id>      move the active entry within the session
  /sessions             list known sessions
  /switch <id>          switch to another session
  /status               print the status line
  /help                 list commands, including extension commands
  /quit                 shut down and exit

Any other slash command is forwarded to the extension registry, so
/approval-mode and /uptime reach the bundled extensions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.NewWithRotation(filepath.Join(cfg.ResolveDataDir(), "logs"), cfg.Log.Level, cfg.Log.Format, logging.RotationConfig{
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer log.Close()

	// The store assumes one writing process per directory.
	lock, err := history.AcquireLock(cfg.ResolveHistoryDir(), log)
	if err != nil {
		return fmt.Errorf("failed to lock history directory: %w", err)
	}
	defer func() { _ = lock.Release() }()

	store, err := history.NewStore(cfg.ResolveHistoryDir(), log)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	mgr := history.NewManager(store, log)
	if err := mgr.Load(); err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	surface := ui.NewTerminalSurface(log)
	reg := extension.NewRegistry(mgr, surface, log)
	if err := reg.Use(approval.New()); err != nil {
		return fmt.Errorf("failed to attach approval gate: %w", err)
	}
	if err := reg.Use(uptime.NewWithInterval(cfg.UI.StatusInterval())); err != nil {
		return fmt.Errorf("failed to attach uptime reporter: %w", err)
	}

	h := host.New(mgr, reg, surface, log)

	name := cfg.Playground.Session
	if len(args) > 0 {
		name = args[0]
	}

	ctx := cmd.Context()
	sess, err := h.StartSession(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s (%s)\n", sess.Name, sess.ID)
	fmt.Fprintln(out, "type to record input, /help for commands, /quit to exit")

	prompt := ""
	if surface.Attached() {
		prompt = "> "
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			instr, err := h.HandleInput(ctx, line)
			if err != nil {
				surface.Notify(ui.LevelError, err.Error())
				continue
			}
			if instr != nil && instr.Block {
				surface.Notify(ui.LevelWarn, "input blocked: "+instr.Reason)
			}
			continue
		}

		if quit := runPlayCommand(ctx, h, out, line); quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		surface.Notify(ui.LevelError, "read error: "+err.Error())
	}

	if err := h.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// runPlayCommand executes one slash command. It reports whether the
// prompt loop should exit.
func runPlayCommand(ctx context.Context, h *host.Host, out io.Writer, line string) bool {
	surface := h.Surface()

	name, rest, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "/")), " ")
	if name == "" {
		surface.Notify(ui.LevelError, "empty command (try /help)")
		return false
	}
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "quit", "exit":
		return true

	case "help":
		printPlayHelp(out, h)

	case "status":
		if status := surface.StatusLine(); status != "" {
			fmt.Fprintln(out, status)
		} else {
			fmt.Fprintln(out, "(no status)")
		}

	case "sessions":
		for _, s := range h.History().List() {
			marker := " "
			if s.ID == h.History().ActiveID() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s  %d entries\n", marker, s.ID, s.Name, s.Len())
		}

	case "switch":
		if len(args) != 1 {
			surface.Notify(ui.LevelError, "usage: /switch <session-id>")
			return false
		}
		sess, err := h.SwitchSession(ctx, args[0])
		if err != nil {
			surface.Notify(ui.LevelError, err.Error())
			return false
		}
		surface.Notify(ui.LevelSuccess, "switched to session "+sess.Name)

	case "fork":
		entryID := ""
		if len(args) > 0 {
			entryID = args[0]
		}
		fork, err := h.Fork(ctx, entryID)
		if err != nil {
			surface.Notify(ui.LevelError, err.Error())
			return false
		}
		surface.Notify(ui.LevelSuccess, fmt.Sprintf("forked into %s (%s)", fork.Name, fork.ID))

	case "goto":
		if len(args) != 1 {
			surface.Notify(ui.LevelError, "usage: /goto <entry-id>")
			return false
		}
		if err := h.NavigateTo(ctx, args[0]); err != nil {
			surface.Notify(ui.LevelError, err.Error())
			return false
		}
		surface.Notify(ui.LevelSuccess, "active entry set to "+args[0])

	case "tool":
		tool, raw, _ := strings.Cut(rest, " ")
		if tool == "" {
			surface.Notify(ui.LevelError, "usage: /tool <name> [json-input]")
			return false
		}
		input := map[string]any{}
		raw = strings.TrimSpace(raw)
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				surface.Notify(ui.LevelError, "invalid tool input: "+err.Error())
				return false
			}
		}
		instr, err := h.HandleToolCall(ctx, tool, input)
		if err != nil {
			surface.Notify(ui.LevelError, err.Error())
			return false
		}
		if instr != nil && instr.Block {
			surface.Notify(ui.LevelWarn, "blocked: "+instr.Reason)
			return false
		}
		surface.Notify(ui.LevelSuccess, "tool "+tool+" permitted")

	default:
		if err := h.RunCommand(ctx, name, args); err != nil {
			if errors.Is(err, errors.ErrUnknownCommand) {
				surface.Notify(ui.LevelError, "unknown command: /"+name+" (try /help)")
			} else {
				surface.Notify(ui.LevelError, err.Error())
			}
		}
	}
	return false
}

func printPlayHelp(out io.Writer, h *host.Host) {
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  /tool <name> [json]   dispatch a tool call")
	fmt.Fprintln(out, "  /fork [entry-id]      fork the active session")
	fmt.Fprintln(out, "  /goto <entry-id>      move the active entry")
	fmt.Fprintln(out, "  /sessions             list sessions")
	fmt.Fprintln(out, "  /switch <id>          switch to another session")
	fmt.Fprintln(out, "  /status               print the status line")
	fmt.Fprintln(out, "  /quit                 shut down and exit")

	cmds := h.Registry().Commands()
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintln(out, "extension commands:")
	for _, c := range cmds {
		fmt.Fprintf(out, "  /%-20s %s\n", c.Name, c.Description)
	}
}
