package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/transcript"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask one question and print the turn",
	Long: `Run a single turn in a new conversation and print it.

The message is taken from the arguments, or from stdin when no
arguments are given.

Examples:
  council ask "Marketer and finance, how should we price the beta?"
  council ask --roles marketer,finance --lanes "Plan our launch"
  echo "What is a KPI?" | council ask --json
  council ask --offline "Everyone, your thoughts on a freemium tier?"`,
	RunE: runAsk,
}

var (
	askRoles   []string
	askLanes   bool
	askJSON    bool
	askOffline bool
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringSliceVarP(&askRoles, "roles", "r", nil, "roles to add before asking (comma separated)")
	askCmd.Flags().BoolVar(&askLanes, "lanes", false, "print the per-role dialogues")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the turn result as JSON")
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "answer with the deterministic offline provider")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message, err := askMessage(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if askOffline {
		cfg.Provider.Default = provider.BackendOffline
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	id, greeting := a.engine.Start(ctx)
	events := greeting
	if len(askRoles) > 0 {
		added, err := a.engine.AddMembers(ctx, id, askRoles)
		if err != nil {
			return err
		}
		events = append(events, added...)
	}

	res, err := a.engine.HandleMessage(ctx, id, message)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printEvents(out, append(events, res.Events...), a.roles, askLanes)
	fmt.Fprintf(out, "\n[%s] roles=%s adopted=%s\n",
		res.Final(), strings.Join(res.Roles, ","), res.Adopted)
	return nil
}

// askMessage joins args, or reads stdin when there are none.
func askMessage(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no message given")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "", errors.New("no message given")
	}
	return msg, nil
}

// printEvents writes events as "Label: text" blocks; consult-lane events
// are indented and skipped unless lanes is set.
func printEvents(w io.Writer, events []transcript.Event, reg roles.Registry, lanes bool) {
	for _, ev := range events {
		if !ev.IsMain() && !lanes {
			continue
		}
		name := authorLabel(ev.Author, reg)
		indent := ""
		if !ev.IsMain() {
			indent = "    "
			if roleID, ok := transcript.LaneRole(ev.Lane); ok && ev.Author == transcript.AuthorOrchestrator {
				name = fmt.Sprintf("%s → %s", name, authorLabel(roleID, reg))
			}
		}
		fmt.Fprintf(w, "%s%s:\n", indent, name)
		for _, line := range strings.Split(ev.Text, "\n") {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}
	}
}

func authorLabel(author string, reg roles.Registry) string {
	switch author {
	case transcript.AuthorUser:
		return "You"
	case transcript.AuthorOrchestrator:
		return "Orchestrator"
	}
	if role, ok := reg.ByID(author); ok {
		return role.Label()
	}
	return author
}
