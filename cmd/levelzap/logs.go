package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dterracino/levelzap/pkg/levelzap/inventory"
	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/output"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

var logsCmd = &cobra.Command{
	Use:   "logs [path]",
	Short: "List recorded journals",
	Long: `List the journals recorded for a target directory.

Every non-dry flatten or cleanup run persists one journal under the target's
.levelzap directory. Each journal is individually revertible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

var logsShowCmd = &cobra.Command{
	Use:   "show <id> [path]",
	Short: "Show the actions of a specific journal",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runLogsShow,
}

var logsVerifyCmd = &cobra.Command{
	Use:   "verify [id] [path]",
	Short: "Check journal integrity",
	Long: `Check the structural integrity of one journal, or of every journal when no
ID is given: required fields, monotonic timestamps, and a matching action
count. Verification does not check that the filesystem still matches the
journal.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runLogsVerify,
}

func init() {
	logsCmd.AddCommand(logsShowCmd)
	logsCmd.AddCommand(logsVerifyCmd)
	rootCmd.AddCommand(logsCmd)
}

// storeAt opens the journal store for a path argument.
func storeAt(args []string, pathIdx int) (*journal.Store, string, error) {
	var rest []string
	if len(args) > pathIdx {
		rest = args[pathIdx:]
	}
	path, err := targetPath(rest)
	if err != nil {
		return nil, "", err
	}
	root, err := inventory.ValidateRoot(path)
	if err != nil {
		return nil, "", err
	}
	store, err := journal.NewStore(root)
	if err != nil {
		return nil, "", err
	}
	return store, root, nil
}

// runLogs lists journals, newest first.
func runLogs(cmd *cobra.Command, args []string) error {
	store, root, err := storeAt(args, 0)
	if err != nil {
		return err
	}

	summaries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list journals: %w", err)
	}

	return render(&output.Result{
		Mode: "logs",
		Root: root,
		Logs: summaries,
	})
}

// runLogsShow displays the actions of one journal.
func runLogsShow(cmd *cobra.Command, args []string) error {
	store, _, err := storeAt(args, 1)
	if err != nil {
		return err
	}

	l, err := store.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println("\nJournal Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:        %s\n", l.ID)
	fmt.Printf("Root:      %s\n", l.Root)
	fmt.Printf("Created:   %s\n", l.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Actions:   %d\n", l.ActionCount)
	fmt.Printf("Dry run:   %t\n", l.Mode.DryRun)
	fmt.Printf("Reverted:  %t\n", l.Reverted)

	if len(l.Actions) > 0 {
		fmt.Println("\nActions:")
		fmt.Println(strings.Repeat("-", 60))
		for i, a := range l.Actions {
			line := fmt.Sprintf("%3d  %-12s  %s", i, a.Op, a.Source)
			if a.Destination != "" {
				line += " -> " + a.Destination
			}
			if a.Outcome != journal.OutcomeSucceeded {
				line += fmt.Sprintf("  [%s]", a.Outcome)
			}
			if !a.Reversible && a.Outcome == journal.OutcomeSucceeded {
				line += "  [non-reversible]"
			}
			fmt.Println(line)
		}
	}

	return nil
}

// runLogsVerify checks one or all journals.
func runLogsVerify(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		path, err := targetPath(nil)
		if err != nil {
			return err
		}
		root, err := inventory.ValidateRoot(path)
		if err != nil {
			return err
		}
		return runVerify(root)
	}

	store, root, err := storeAt(args, 1)
	if err != nil {
		return err
	}

	validity, err := store.Verify(args[0])
	if err != nil {
		return err
	}

	if err := render(&output.Result{
		Mode:     "verify",
		Root:     root,
		Validity: validity,
	}); err != nil {
		return err
	}
	if !validity.Valid {
		return fmt.Errorf("%w: %s", types.ErrCorruptLog, args[0])
	}
	return nil
}
