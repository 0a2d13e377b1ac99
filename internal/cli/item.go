package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/app"
	"github.com/n0roo/vibespinner/internal/catalog"
	"github.com/n0roo/vibespinner/internal/schema"
)

// normalizeTags maps raw flag values to schema form, so --tag Food
// matches the same as the TUI's toggle
func normalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		out = append(out, schema.Normalize(tag))
	}
	return out
}

var (
	itemTags    []string
	itemAll     bool
	itemNewName string
	itemForce   bool
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage places",
	Long:  `Add, list, edit and delete catalog places.`,
}

var itemAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a place",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemAdd,
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List places, optionally filtered by tags",
	RunE:  runItemList,
}

var itemEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a place's name or tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemEdit,
}

var itemRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a place",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemRm,
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemEditCmd)
	itemCmd.AddCommand(itemRmCmd)

	itemAddCmd.Flags().StringArrayVar(&itemTags, "tag", nil, "Tag to attach (repeatable)")
	itemListCmd.Flags().StringArrayVar(&itemTags, "tag", nil, "Filter tag (repeatable)")
	itemListCmd.Flags().BoolVar(&itemAll, "all", false, "Ignore filters, list everything")
	itemEditCmd.Flags().StringVar(&itemNewName, "name", "", "New name")
	itemEditCmd.Flags().StringArrayVar(&itemTags, "tag", nil, "Replacement tag set (repeatable)")
	itemRmCmd.Flags().BoolVarP(&itemForce, "force", "f", false, "Skip confirmation")
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	form := a.Selection(app.CtxForm)
	form.Seed(a.Schema(), normalizeTags(itemTags))
	if form.Count() == 0 {
		return fmt.Errorf("no known tags given (see: vibe tag list)")
	}

	added, err := a.AddItem(args[0])
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("name must not be empty")
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "added",
			"name":   strings.TrimSpace(args[0]),
		})
	}
	fmt.Printf("✓ Added %s\n", strings.TrimSpace(args[0]))
	return nil
}

func runItemList(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	var items []catalog.Item
	switch {
	case itemAll || len(itemTags) == 0:
		items = a.Items()
	default:
		a.Selection(app.CtxFilter).Seed(a.Schema(), normalizeTags(itemTags))
		items = a.FilteredItems()
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("No places found.")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %s", item.ID, item.Name)
		if len(item.Tags) > 0 {
			fmt.Printf("  [%s]", strings.Join(item.Tags, ", "))
		}
		if verbose && item.CreatedByName != "" {
			fmt.Printf("  by %s", item.CreatedByName)
		}
		fmt.Println()
	}
	return nil
}

func runItemEdit(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	item, ok := a.BeginEdit(args[0])
	if !ok {
		return fmt.Errorf("no such place: %s", args[0])
	}

	name := item.Name
	if itemNewName != "" {
		name = itemNewName
	}
	if len(itemTags) > 0 {
		edit := a.Selection(app.CtxEdit)
		edit.Clear()
		edit.Seed(a.Schema(), normalizeTags(itemTags))
	}

	saved, err := a.SubmitEdit(name)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("name must not be empty")
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"id":     args[0],
		})
	}
	fmt.Printf("✓ Updated %s\n", name)
	return nil
}

func runItemRm(cmd *cobra.Command, args []string) error {
	a, cleanup, err := getApp()
	if err != nil {
		return err
	}
	defer cleanup()

	var item catalog.Item
	found := false
	for _, candidate := range a.Items() {
		if candidate.ID == args[0] {
			item, found = candidate, true
			break
		}
	}
	if !found {
		return fmt.Errorf("no such place: %s", args[0])
	}

	if !itemForce {
		fmt.Printf("Delete %q? [y/N] ", item.Name)
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// First press arms, second confirms
	if _, err := a.PressDelete(args[0]); err != nil {
		return err
	}
	deleted, err := a.PressDelete(args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("delete was not confirmed")
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "deleted",
			"id":     args[0],
		})
	}
	fmt.Printf("✓ Deleted %s\n", item.Name)
	return nil
}
