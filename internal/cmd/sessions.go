package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gatehouse-sh/gatehouse/internal/config"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored sessions",
	Long:  `Commands for listing stored sessions and showing their history.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long: `List every session in the history directory with its name,
creation time, and entry count.`,
	RunE: runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the active branch of a session",
	Long: `Print the entries on the active branch of a session, oldest first.
Message entries show their role and text; custom entries show their
tag and payload.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsShow,
}

var sessionsFormat string

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)

	sessionsCmd.PersistentFlags().StringVar(&sessionsFormat, "format", "text", "Output format: text, json, or yaml")
}

// sessionSummary is the list row rendered in every output format.
type sessionSummary struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
	Entries int       `json:"entries" yaml:"entries"`
}

// entryView flattens a history entry for display. Payloads are shown
// as raw JSON text rather than nested structures.
type entryView struct {
	ID      string    `json:"id" yaml:"id"`
	Parent  string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Type    string    `json:"type" yaml:"type"`
	Role    string    `json:"role,omitempty" yaml:"role,omitempty"`
	Text    string    `json:"text,omitempty" yaml:"text,omitempty"`
	Tag     string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Payload string    `json:"payload,omitempty" yaml:"payload,omitempty"`
	Created time.Time `json:"created" yaml:"created"`
}

// openManager loads every readable session from the configured history
// directory. Warnings about unreadable files go to stderr. The second
// return value is the history directory itself.
func openManager() (*history.Manager, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New("", "warn", "text")
	if err != nil {
		return nil, "", err
	}

	dir := cfg.ResolveHistoryDir()
	store, err := history.NewStore(dir, log)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open history store: %w", err)
	}

	mgr := history.NewManager(store, log)
	if err := mgr.Load(); err != nil {
		return nil, "", fmt.Errorf("failed to load sessions: %w", err)
	}
	return mgr, dir, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	mgr, dir, err := openManager()
	if err != nil {
		return err
	}

	sessions := mgr.List()
	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, sessionSummary{
			ID:      s.ID,
			Name:    s.Name,
			Created: s.CreatedAt,
			Entries: s.Len(),
		})
	}

	out := cmd.OutOrStdout()
	switch sessionsFormat {
	case "json":
		return writeJSON(out, summaries)
	case "yaml":
		return writeYAML(out, summaries)
	case "text":
	default:
		return fmt.Errorf("unknown format %q (want text, json, or yaml)", sessionsFormat)
	}

	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintln(out, "Gatehouse Sessions")
	fmt.Fprintln(out, strings.Repeat("─", 60))

	if holder, ok := history.Holder(dir); ok {
		fmt.Fprintf(out, "Locked by PID %d on %s\n", holder.PID, holder.Hostname)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "\nNo sessions found.")
		fmt.Fprintln(out, "Run 'gatehouse play' to create one.")
		return nil
	}

	fmt.Fprintf(out, "\nFound %d session(s):\n\n", len(summaries))
	for _, s := range summaries {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(out, "  Session: %s\n", s.ID)
		fmt.Fprintf(out, "    Name:    %s\n", name)
		fmt.Fprintf(out, "    Created: %s\n", s.Created.Format(time.RFC822))
		fmt.Fprintf(out, "    Entries: %d\n", s.Entries)
		fmt.Fprintln(out)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	sess, err := mgr.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	branch := sess.Branch()
	views := make([]entryView, 0, len(branch))
	for _, e := range branch {
		views = append(views, entryView{
			ID:      e.ID,
			Parent:  e.ParentID,
			Type:    string(e.Type),
			Role:    e.Role,
			Text:    e.Text,
			Tag:     e.CustomType,
			Payload: string(e.Payload),
			Created: e.CreatedAt,
		})
	}

	out := cmd.OutOrStdout()
	switch sessionsFormat {
	case "json":
		return writeJSON(out, views)
	case "yaml":
		return writeYAML(out, views)
	case "text":
	default:
		return fmt.Errorf("unknown format %q (want text, json, or yaml)", sessionsFormat)
	}

	fmt.Fprintf(out, "%s (%s), %d entries on the active branch\n\n", sess.Name, sess.ID, len(views))
	for _, v := range views {
		switch v.Type {
		case string(history.EntryCustom):
			fmt.Fprintf(out, "%s  %s  [%s] %s\n", v.Created.Format("15:04:05"), v.ID, v.Tag, util.TruncateString(v.Payload, 72))
		default:
			fmt.Fprintf(out, "%s  %s  [%s] %s\n", v.Created.Format("15:04:05"), v.ID, v.Role, util.TruncateString(v.Text, 72))
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(out io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
