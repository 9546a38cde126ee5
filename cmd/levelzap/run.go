package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dterracino/levelzap/pkg/levelzap/flatten"
	"github.com/dterracino/levelzap/pkg/levelzap/inventory"
	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/output"
	"github.com/dterracino/levelzap/pkg/levelzap/revert"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// runRoot dispatches the root command to the requested mode. Exactly one
// mode runs per invocation; combining them is rejected before anything
// touches the filesystem.
func runRoot(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	doRevert, _ := flags.GetBool("revert")
	revertAll, _ := flags.GetBool("revert-all")
	all, _ := flags.GetBool("all")
	doSize, _ := flags.GetBool("size")
	doCount, _ := flags.GetBool("count")
	removeEmpty, _ := flags.GetBool("remove-empty")
	removeZero, _ := flags.GetBool("remove-zero")
	doVerify, _ := flags.GetBool("verify")
	listLogs, _ := flags.GetBool("list-logs")

	revertAll = revertAll || (doRevert && all)

	modes := 0
	for _, on := range []bool{doRevert || revertAll, doSize || doCount, removeEmpty || removeZero, doVerify, listLogs} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("conflicting mode flags: pick one of flatten, revert, analysis, cleanup, verify, or list-logs")
	}

	path, err := targetPath(args)
	if err != nil {
		return err
	}
	root, err := inventory.ValidateRoot(path)
	if err != nil {
		printError("%v", err)
		return err
	}

	switch {
	case revertAll:
		return runRevert(root, true)
	case doRevert:
		return runRevert(root, false)
	case doSize || doCount:
		return runAnalyze(cmd, root)
	case removeEmpty || removeZero:
		return runCleanup(cmd, root, removeEmpty, removeZero)
	case doVerify:
		return runVerify(root)
	case listLogs:
		return runListLogs(root)
	default:
		return runFlatten(cmd, root)
	}
}

// runFlatten executes the flatten engine against root.
func runFlatten(cmd *cobra.Command, root string) error {
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	recurse, _ := flags.GetBool("recurse")
	yes, _ := flags.GetBool("yes")

	opts := flatten.Options{
		DryRun:    dryRun,
		Merge:     viper.GetBool("merge"),
		Overwrite: viper.GetBool("overwrite"),
		Strict:    viper.GetBool("strict"),
		Recurse:   recurse,
	}

	if opts.Overwrite && !opts.DryRun && !yes {
		if !confirmDestructive() {
			printInfo("Aborted.")
			return nil
		}
	}

	res, err := flatten.Flatten(root, opts)
	if err != nil {
		printError("%v", err)
		return err
	}

	return render(&output.Result{
		Mode:      "flatten",
		Root:      root,
		DryRun:    dryRun,
		JournalID: res.JournalID,
		Report:    res.Report,
	})
}

// runRevert undoes the most recent journal, or every journal when all is set.
func runRevert(root string, all bool) error {
	store, err := journal.NewStore(root)
	if err != nil {
		return err
	}
	opts := revert.Options{KeepLogs: viper.GetBool("keep_logs")}

	var report *types.Report
	if all {
		report, err = revert.All(store, opts)
	} else {
		report, err = revert.Latest(store, opts)
	}
	if err != nil {
		printError("%v", err)
		return err
	}

	return render(&output.Result{
		Mode:   "revert",
		Root:   root,
		Report: report,
	})
}

// runAnalyze reports size/count totals without mutating anything.
func runAnalyze(cmd *cobra.Command, root string) error {
	recurse, _ := cmd.Flags().GetBool("recurse")
	minSizeStr, _ := cmd.Flags().GetString("min-size")

	var minSize int64
	if minSizeStr != "" {
		var err error
		minSize, err = types.ParseSize(minSizeStr)
		if err != nil {
			printError("%v", err)
			return err
		}
	}

	analysis, err := inventory.Analyze(root, recurse, minSize)
	if err != nil {
		printError("%v", err)
		return err
	}

	return render(&output.Result{
		Mode:     "analyze",
		Root:     root,
		Analysis: analysis,
	})
}

// runCleanup removes empty subdirectories and/or zero-byte files.
func runCleanup(cmd *cobra.Command, root string, removeEmpty, removeZero bool) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	res, err := flatten.Cleanup(root, flatten.CleanupOptions{
		DryRun:      dryRun,
		RemoveEmpty: removeEmpty,
		RemoveZero:  removeZero,
	})
	if err != nil {
		printError("%v", err)
		return err
	}

	return render(&output.Result{
		Mode:      "cleanup",
		Root:      root,
		DryRun:    dryRun,
		JournalID: res.JournalID,
		Report:    res.Report,
	})
}

// runVerify checks the integrity of every recorded journal. Any corrupt
// journal makes the invocation fail.
func runVerify(root string) error {
	store, err := journal.NewStore(root)
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		printError("%v", types.ErrLogNotFound)
		return types.ErrLogNotFound
	}

	var failed bool
	for _, s := range summaries {
		validity, err := store.Verify(s.ID)
		if err != nil {
			printError("%s: %v", s.ID, err)
			failed = true
			continue
		}
		if renderErr := render(&output.Result{
			Mode:     "verify",
			Root:     root,
			Validity: validity,
		}); renderErr != nil {
			return renderErr
		}
		if !validity.Valid {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("%w: one or more journals failed verification", types.ErrCorruptLog)
	}
	return nil
}

// runListLogs enumerates recorded journals, newest first.
func runListLogs(root string) error {
	store, err := journal.NewStore(root)
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return err
	}

	return render(&output.Result{
		Mode: "logs",
		Root: root,
		Logs: summaries,
	})
}

// render formats a result with the configured formatter and prints it.
func render(r *output.Result) error {
	name := viper.GetString("output")
	if name == "" {
		name = "plain"
	}

	formatter, err := output.Get(name)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// confirmDestructive asks for explicit confirmation before a destructive
// overwrite run. Overwritten content is not recoverable by revert.
func confirmDestructive() bool {
	fmt.Println("WARNING: overwrite mode is destructive; overwritten content cannot be restored by revert.")
	fmt.Print("Type YES to continue: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "YES"
}
