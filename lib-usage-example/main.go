package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/export"
)

func main() {
	// Usage: go run *.go -basket cesta.json -version b

	basketFlag := flag.String("basket", "cesta.json", "Basket file written by `cesta generate`")
	versionFlag := flag.String("version", "a", "Version to edit (a, b or c)")

	// Parse the command-line flags
	flag.Parse()

	data, err := os.ReadFile(*basketFlag)
	if err != nil {
		fmt.Println(err)
		return
	}
	snap, err := basket.DecodeSnapshot(data)
	if err != nil {
		fmt.Println(err)
		return
	}
	key, ok := basket.ParseVersionKey(*versionFlag)
	if !ok {
		fmt.Println("Version must be a, b or c.")
		return
	}

	store := basket.NewStore(snap)
	store.Subscribe(func(c basket.Change) {
		fmt.Printf("%s on %s/%s, new total %s€\n", c.Op, c.Version, c.Section, basket.FormatPrice(c.Aggregate.TotalPrice))
	})

	// Swap the first lunch item for the first candidate offered by another version
	if groups := store.Candidates(key, basket.Lunch); len(groups) > 0 {
		store.ReplaceItem(key, basket.Lunch, 0, groups[0].Items[0])
	}

	v, _ := store.Version(key)
	fmt.Print(export.Text(v))
}
