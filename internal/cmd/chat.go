package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/council/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation in the terminal.

Inside the chat, type a message and press enter. Slash commands:
  /add <role> [role...]   add roles to the conversation
  /members                show the conversation's members
  /roles                  list every role
  /recommend              list the recommended roles
  /lanes                  show or hide the per-role dialogues
  /quit                   leave`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("council chat needs an interactive terminal; use 'council ask' for scripts")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	// Logs only reach a file; stderr belongs to the terminal UI.
	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.New(ctx, a.engine).Run()
}
