// Command datagen writes a synthetic transaction CSV for development and
// load testing. The same seed always produces the same file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/smallbiznis/ledgerline/internal/generator"
)

func main() {
	var (
		count = flag.Int("count", 10000, "number of rows to generate")
		seed  = flag.Int64("seed", 42, "random seed")
		out   = flag.String("out", "transactions.csv", "output file path")
	)
	flag.Parse()

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "count must be at least 1")
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	gen := generator.New(*seed, time.Now())
	if err := gen.WriteCSV(f, *count); err != nil {
		fmt.Fprintf(os.Stderr, "write csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d rows to %s\n", *count, *out)
	fmt.Println("customers:")
	for _, id := range gen.Customers() {
		fmt.Printf("  %s\n", id)
	}
	fmt.Println("products:")
	for _, id := range gen.Products() {
		fmt.Printf("  %s\n", id)
	}
}
