package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lockForce bool

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Inspect mutation locks",
	Long:  `Shows and clears the locks that serialize taxonomy rewrites.`,
}

var lockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List held locks",
	RunE:  runLockList,
}

var lockClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all locks",
	RunE:  runLockClear,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.AddCommand(lockListCmd)
	lockCmd.AddCommand(lockClearCmd)

	lockClearCmd.Flags().BoolVar(&lockForce, "force", false, "Clear without confirmation")
}

func runLockList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := getLockService()
	if err != nil {
		return err
	}
	defer cleanup()

	locks, err := svc.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(locks)
	}

	if len(locks) == 0 {
		fmt.Println("No locks held.")
		return nil
	}
	for _, l := range locks {
		fmt.Printf("%s  held by %s since %s\n", l.Resource, l.Owner, l.AcquiredAt.Format("15:04:05"))
	}
	return nil
}

func runLockClear(cmd *cobra.Command, args []string) error {
	if !lockForce {
		return fmt.Errorf("clearing locks can corrupt an in-flight rewrite; pass --force to proceed")
	}

	svc, cleanup, err := getLockService()
	if err != nil {
		return err
	}
	defer cleanup()

	cleared, err := svc.Clear()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"cleared": cleared})
	}
	fmt.Printf("✓ Cleared %d lock(s)\n", cleared)
	return nil
}
