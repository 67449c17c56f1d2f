//go:build ignore

// generate_testdata.go creates standard path datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.csv   (100 paths)
//   tests/testdata/benchmark/medium.csv  (1000 paths)
//   tests/testdata/benchmark/large.csv   (5000 paths)
//   tests/testdata/benchmark/huge.csv    (20000 paths)
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

type datasetSpec struct {
	name  string
	size  int
	depth int
	fan   int
}

var datasets = []datasetSpec{
	{"small", 100, 4, 5},
	{"medium", 1000, 5, 8},
	{"large", 5000, 6, 10},
	{"huge", 20000, 7, 12},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		path := filepath.Join(outputDir, ds.name+".csv")
		if err := writeDataset(path, ds); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d paths, depth<=%d, fanout<=%d)\n", path, ds.size, ds.depth, ds.fan)
	}
}

// writeDataset emits one CSV row per path, one segment per cell. A fixed
// seed keeps benchmark inputs stable across runs.
func writeDataset(path string, ds datasetSpec) error {
	rng := rand.New(rand.NewSource(int64(ds.size)))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for i := 0; i < ds.size; i++ {
		depth := 2 + rng.Intn(ds.depth-1)
		segs := make([]string, 0, depth)
		for d := 0; d < depth; d++ {
			segs = append(segs, fmt.Sprintf("dir%d_%d", d, rng.Intn(ds.fan)))
		}
		if _, err := fmt.Fprintln(f, strings.Join(segs, ",")); err != nil {
			return err
		}
	}
	return nil
}
