package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/tui/styles"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View council logs",
	Long: `View and filter the debug log written when logging.enabled is set.

Examples:
  # Show the last 50 entries
  council logs

  # Show every entry of one conversation
  council logs --conversation 3f2a -n 0

  # Follow the log
  council logs -f

  # Only warnings and errors from the last hour
  council logs --level warn --since 1h

  # One role's consultations
  council logs --role finance --grep consultation

  # Several roles at once (glob pattern)
  council logs --role '{finance,legal}'`,
	RunE: runLogs,
}

var (
	logsTail         int
	logsFollow       bool
	logsLevel        string
	logsSince        string
	logsConversation string
	logsRole         string
	logsState        string
	logsGrep         string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsConversation, "conversation", "", "Filter by conversation id (prefix)")
	logsCmd.Flags().StringVar(&logsRole, "role", "", "Filter by role id (glob pattern, e.g. 'fin*')")
	logsCmd.Flags().StringVar(&logsState, "state", "", "Filter by turn state, e.g. FOLLOWUP_LOOP")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries whose message contains this text")
}

var levelStyles = map[string]lipgloss.Style{
	logging.LevelDebug: styles.Muted,
	logging.LevelInfo:  lipgloss.NewStyle().Foreground(styles.BlueColor),
	logging.LevelWarn:  lipgloss.NewStyle().Foreground(styles.WarningColor),
	logging.LevelError: styles.ErrorMsg,
}

// logFilter builds the filter from the command flags. The conversation
// and role flags are patterns, so they are applied by entryMatcher.
func logFilter(now time.Time) (logging.Filter, error) {
	f := logging.Filter{
		State:           logsState,
		MessageContains: logsGrep,
	}
	if logsLevel != "" {
		f.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return logging.Filter{}, fmt.Errorf("invalid duration format: %w", err)
		}
		f.Since = now.Add(-d)
	}
	return f, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logPath := filepath.Join(cfg.Logging.LogDir(), logging.FileName)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		if !cfg.Logging.Enabled {
			fmt.Fprintln(out, "Enable them with logging.enabled: true")
		}
		return nil
	}

	filter, err := logFilter(time.Now())
	if err != nil {
		return err
	}
	match, err := newEntryMatcher(logsConversation, logsRole)
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(commandContext(cmd).Done(), out, logPath, filter, match)
	}
	return displayLogs(out, logPath, logsTail, filter, match)
}

// displayLogs reads the log file and prints the filtered entries.
func displayLogs(w io.Writer, logPath string, tail int, filter logging.Filter, match entryMatcher) error {
	entries, err := logging.ReadFile(logPath)
	if err != nil {
		return err
	}
	entries = match.apply(filter.Apply(entries))

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	for _, e := range entries {
		fmt.Fprintln(w, formatEntry(e))
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching log entries found.")
	}
	return nil
}

// followLogs implements tail -f behavior for the log file
func followLogs(done <-chan struct{}, w io.Writer, logPath string, filter logging.Filter, match entryMatcher) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(w, "Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			select {
			case <-done:
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading log file: %w", err)
		}

		entries, err := logging.Read(bytes.NewReader(line))
		if err != nil || len(entries) == 0 {
			continue
		}
		for _, e := range match.apply(filter.Apply(entries)) {
			fmt.Fprintln(w, formatEntry(e))
		}
	}
}

// entryMatcher selects entries by conversation id prefix and role glob.
type entryMatcher struct {
	conversation string
	role         glob.Glob
}

func newEntryMatcher(conversation, rolePattern string) (entryMatcher, error) {
	m := entryMatcher{conversation: conversation}
	if rolePattern != "" {
		g, err := glob.Compile(rolePattern)
		if err != nil {
			return entryMatcher{}, fmt.Errorf("invalid role pattern %q: %w", rolePattern, err)
		}
		m.role = g
	}
	return m, nil
}

func (m entryMatcher) apply(entries []logging.Entry) []logging.Entry {
	if m.conversation == "" && m.role == nil {
		return entries
	}
	var out []logging.Entry
	for _, e := range entries {
		if !strings.HasPrefix(e.ConversationID, m.conversation) {
			continue
		}
		if m.role != nil && !m.role.Match(e.RoleID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// formatEntry colors the level of a formatted entry.
func formatEntry(e logging.Entry) string {
	line := e.Format()
	style, ok := levelStyles[e.Level]
	if !ok || e.Level == "" {
		return line
	}
	return strings.Replace(line, e.Level, style.Render(e.Level), 1)
}
