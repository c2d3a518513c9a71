package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var flagResetYes bool

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Recompute lifestyle creep from recent transactions",
	RunE:  runCreepAction(views.ActionCompute),
}

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Manage the spending baselines creep is measured against",
}

var baselinesLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Freeze baselines so future computations compare against them",
	RunE:  runCreepAction(views.ActionLock),
}

var baselinesUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Let baselines follow recent spending again",
	RunE:  runCreepAction(views.ActionUnlock),
}

var baselinesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard baselines; the next computation starts over",
	RunE:  runCreepAction(views.ActionReset),
}

func init() {
	baselinesResetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")

	baselinesCmd.AddCommand(baselinesLockCmd)
	baselinesCmd.AddCommand(baselinesUnlockCmd)
	baselinesCmd.AddCommand(baselinesResetCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(computeCmd)
}

func runCreepAction(action string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		if action == views.ActionReset && !flagResetYes {
			ok, err := confirm("Reset all baselines?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("  Aborted.")
				return nil
			}
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		mut := views.NewCreepMutation(action, b.src, b.opts)
		defer mut.Close()

		res, err := mut.Mutate(ctx, struct{}{})
		return reportCreepAction(action, res, err)
	}
}

// reportCreepAction prints a mutation outcome. A failure is printed and
// still returned, so the exit status is non-zero in both output modes.
func reportCreepAction(action string, res views.ComputationModel, err error) error {
	if flagJSON {
		if perr := printJSON(struct {
			Action string                 `json:"action"`
			Result views.ComputationModel `json:"result"`
			Error  string                 `json:"error,omitempty"`
		}{Action: action, Result: res, Error: errorText(err)}); perr != nil {
			return perr
		}
		return creepActionError(action, err)
	}
	if err != nil {
		return creepActionError(action, err)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", cli.Colorize(res.Color, string(res.Status)), orPlaceholder(res.Message != "", res.Message))
	if res.CategoriesAnalyzed != nil {
		fmt.Printf("  Categories analyzed: %d\n", *res.CategoriesAnalyzed)
	}
	if res.ComputedAt != "" {
		fmt.Printf("  Computed at: %s\n", res.ComputedAt)
	}
	return nil
}

func creepActionError(action string, err error) error {
	var compErr *analytics.ComputationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &compErr):
		return fmt.Errorf("%s failed: %s", action, compErr.Message)
	default:
		return friendlyError(err)
	}
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses so scripts must pass --yes.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to reset without a terminal; pass --yes")
	}
	fmt.Printf("  %s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
