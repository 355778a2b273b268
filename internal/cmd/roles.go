package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the consultable roles",
	Long: `List the roles of the configured role file, or the built-in roles.

Use --yaml to print the roles as a role file, a starting point for
roles.file.`,
	RunE: runRoles,
}

var rolesYAML bool

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().BoolVar(&rolesYAML, "yaml", false, "print the roles as a YAML role file")
}

func runRoles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rc := cfg.Roles
	rc.Watch = false
	reg, err := loadRoles(commandContext(cmd), rc, logging.NopLogger(), nil)
	if err != nil {
		cmd.PrintErrf("warning: %v; showing built-in roles\n", err)
	}

	out := cmd.OutOrStdout()
	if rolesYAML {
		return writeRolesYAML(out, reg)
	}
	writeRolesTable(out, reg)
	return nil
}

func writeRolesTable(w io.Writer, reg roles.Registry) {
	recommended := reg.Recommended()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tREQUIRES\tALIASES\t")
	for _, id := range reg.AllIDs() {
		role, ok := reg.ByID(id)
		if !ok {
			continue
		}
		title := role.Label()
		for _, r := range recommended {
			if r == id {
				title += " *"
				break
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", role.ID, title,
			dashIfEmpty(strings.Join(role.Requires, ",")),
			dashIfEmpty(strings.Join(role.Aliases, ",")))
	}
	_ = tw.Flush()
	fmt.Fprintln(w, "\n* recommended")
}

func writeRolesYAML(w io.Writer, reg roles.Registry) error {
	var list []roles.Role
	for _, id := range reg.AllIDs() {
		if role, ok := reg.ByID(id); ok {
			list = append(list, role)
		}
	}
	set, err := roles.NewSet(reg.Orchestrator(), list, reg.Recommended())
	if err != nil {
		return err
	}
	data, err := roles.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
