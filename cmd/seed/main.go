// Package main provides a tool to assemble the catalog fixture document.
//
// It combines the per-collection JSON files (authors, books, stores,
// inventory, users) into the single keyed document the catalog API serves,
// and reports referential gaps so deliberate ones can be told apart from
// typos.
//
// Usage:
//
//	go run ./cmd/seed                          # ./public/data -> ./db.json
//	go run ./cmd/seed --data-dir ./fixtures --out /tmp/db.json
//	go run ./cmd/seed --check                  # lint only, no output file
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/bookstandapp/bookstand-web/internal/seed"
)

var (
	dataDir   = flag.String("data-dir", "./public/data", "Directory holding the per-collection JSON files")
	outPath   = flag.String("out", "./db.json", "Path of the combined document to write")
	checkOnly = flag.Bool("check", false, "Lint the dataset without writing the combined document")
)

func main() {
	flag.Parse()

	fmt.Printf("Reading collections from: %s\n", *dataDir)

	ds, err := seed.LoadDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	fmt.Printf("Loaded %d authors, %d books, %d stores, %d inventory items, %d users\n",
		len(ds.Authors), len(ds.Books), len(ds.Stores), len(ds.Inventory), len(ds.Users))

	findings := seed.Lint(ds)
	if len(findings) > 0 {
		fmt.Printf("\n%d referential gaps (the storefront renders placeholders for these):\n", len(findings))
		for _, finding := range findings {
			fmt.Printf("  - %s\n", finding)
		}
	}

	if *checkOnly {
		fmt.Println("\nCheck complete, no output written.")
		return
	}

	if err := seed.WriteFile(ds, *outPath); err != nil {
		log.Fatalf("Failed to write combined document: %v", err)
	}

	fmt.Printf("\nWrote combined document to: %s\n", *outPath)
}
