package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/lock"
)

// getLockService opens a lock service over the project database
func getLockService() (*lock.Service, func(), error) {
	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return lock.NewService(database), func() { database.Close() }, nil
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage the tag taxonomy",
	Long:  `List tag groups and add or remove tags. Removing a tag strips it from every place that carries it.`,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all tag groups",
	RunE:  runTagList,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <group> <tag>",
	Short: "Add a tag to a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagAdd,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <group> <tag>",
	Short: "Remove a tag and strip it from places",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagRm,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	s := a.Schema()

	if jsonOut {
		type groupOut struct {
			Name      string   `json:"name"`
			Logic     string   `json:"logic"`
			Tags      []string `json:"tags"`
			DependsOn string   `json:"depends_on,omitempty"`
		}
		var out []groupOut
		for _, name := range s.Ordered() {
			g := s.Groups[name]
			entry := groupOut{Name: name, Logic: string(g.Logic), Tags: g.Tags}
			if g.Condition != nil {
				entry.DependsOn = g.Condition.Group
			}
			out = append(out, entry)
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	for _, name := range s.Ordered() {
		g := s.Groups[name]
		fmt.Printf("%s (%s)", name, g.Logic)
		if g.Condition != nil {
			fmt.Printf("  when %s is %s", g.Condition.Group, strings.Join(g.Condition.AnyOf, "|"))
		}
		fmt.Printf("\n  %s\n", strings.Join(g.Tags, ", "))
	}
	return nil
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	locks, release, err := getLockService()
	if err != nil {
		return err
	}
	defer release()

	group, tag := args[0], args[1]
	var added bool
	err = locks.WithSchemaLock(a.Session().UserID, func() error {
		var err error
		added, err = a.AddTag(group, tag)
		return err
	})
	if err != nil {
		return err
	}
	if !added {
		fmt.Printf("Nothing to do: %q already in %s (or group unknown)\n", tag, group)
		return nil
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "added",
			"group":  group,
			"tag":    tag,
		})
	}
	fmt.Printf("✓ Added %q to %s\n", tag, group)
	return nil
}

func runTagRm(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	locks, release, err := getLockService()
	if err != nil {
		return err
	}
	defer release()

	// Tag removal rewrites items and the schema in separate writes,
	// so it runs under the schema lock
	group, tag := args[0], args[1]
	var removed bool
	err = locks.WithSchemaLock(a.Session().UserID, func() error {
		var err error
		removed, err = a.DeleteTag(group, tag)
		return err
	})
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("Nothing to do: %q not in %s\n", tag, group)
		return nil
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "removed",
			"group":  group,
			"tag":    tag,
		})
	}
	fmt.Printf("✓ Removed %q from %s and stripped it from places\n", tag, group)
	return nil
}
