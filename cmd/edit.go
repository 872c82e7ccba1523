package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/catalog"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Add, remove or replace items of a basket version",
}

var editAddCmd = &cobra.Command{
	Use:   "add <version> <section> <product name>",
	Short: "Add a catalog product to a section",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editBasket(cmd, args[0], args[1], func(store *basket.Store, key basket.VersionKey, section basket.SectionName) (bool, error) {
			searcher, closeFn, err := newSearcher(cmd)
			if err != nil {
				return false, err
			}
			defer closeFn()
			p, err := catalog.FindByName(context.Background(), searcher, strings.Join(args[2:], " "))
			if err != nil {
				return false, err
			}
			return store.AddItem(key, section, p), nil
		})
	},
}

var editRemoveCmd = &cobra.Command{
	Use:   "remove <version> <section> <index>",
	Short: "Remove the item at index from a section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad index %q", args[2])
		}
		return editBasket(cmd, args[0], args[1], func(store *basket.Store, key basket.VersionKey, section basket.SectionName) (bool, error) {
			return store.RemoveItem(key, section, i), nil
		})
	},
}

var editReplaceCmd = &cobra.Command{
	Use:   "replace <version> <section> <index> <product name>",
	Short: "Replace the item at index with a candidate from another version or the catalog",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad index %q", args[2])
		}
		name := strings.Join(args[3:], " ")
		return editBasket(cmd, args[0], args[1], func(store *basket.Store, key basket.VersionKey, section basket.SectionName) (bool, error) {
			p, ok := findCandidate(store, key, section, name)
			if !ok {
				searcher, closeFn, err := newSearcher(cmd)
				if err != nil {
					return false, err
				}
				defer closeFn()
				if p, err = catalog.FindByName(context.Background(), searcher, name); err != nil {
					return false, err
				}
			}
			return store.ReplaceItem(key, section, i, p), nil
		})
	},
}

func findCandidate(store *basket.Store, key basket.VersionKey, section basket.SectionName, name string) (basket.Product, bool) {
	for _, g := range store.Candidates(key, section) {
		for _, p := range g.Items {
			if p.Name == name {
				return p, true
			}
		}
	}
	return basket.Product{}, false
}

type editFunc func(store *basket.Store, key basket.VersionKey, section basket.SectionName) (bool, error)

func editBasket(cmd *cobra.Command, version, section string, edit editFunc) error {
	key, err := versionArg(version)
	if err != nil {
		return err
	}
	name, err := sectionArg(section)
	if err != nil {
		return err
	}
	store, path, err := loadStore(cmd)
	if err != nil {
		return err
	}

	cancel := store.Subscribe(func(c basket.Change) {
		utils.Log.Debugf("%s %s/%s[%d] %q", c.Op, c.Version, c.Section, c.Index, c.Product.Name)
	})
	defer cancel()

	applied, err := edit(store, key, name)
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("Nothing changed: no item at that position.")
		return nil
	}
	if err := saveSnapshot(path, store.Snapshot()); err != nil {
		return err
	}
	v, _ := store.Version(key)
	printSummary([]basket.Version{v}, 7)
	return nil
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.AddCommand(editAddCmd)
	editCmd.AddCommand(editRemoveCmd)
	editCmd.AddCommand(editReplaceCmd)
}
