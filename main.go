// Command main runs the concurrent writer demo: several goroutines create
// records in one store at the same time, then the directory is checked for
// dense ids and non-overlapping content.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/0xRadioAc7iv/go-slotstore/internal/logger"
	"github.com/0xRadioAc7iv/go-slotstore/pkg/slotstore"
)

func main() {
	dir := flag.String("dir", "./demo", "Directory to keep the demo store in")
	workers := flag.Int("workers", 5, "Concurrent writers")
	perWorker := flag.Int("n", 5, "Records created by each writer")
	flag.Parse()

	log := logger.New("info", os.Stderr)

	if err := run(*dir, *workers, *perWorker); err != nil {
		log.WithError(err).Error("demo failed")
		os.Exit(1)
	}
}

func run(dir string, workers, perWorker int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	store, err := slotstore.Open(dir)
	if err != nil {
		return err
	}
	defer store.Stop()

	if err := store.Reset(); err != nil {
		return err
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if _, err := store.Create([]byte(fmt.Sprintf("at %d on %d", i, j))); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}

	if want := workers * perWorker; len(records) != want {
		return fmt.Errorf("expected %d records, found %d", want, len(records))
	}
	for i, r := range records {
		if r.ID != uint32(i) {
			return fmt.Errorf("slot %d holds id %d", i, r.ID)
		}
	}

	byOffset := append([]slotstore.Record(nil), records...)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Offset < byOffset[j].Offset })
	for i := 1; i < len(byOffset); i++ {
		if byOffset[i-1].End() > uint64(byOffset[i].Offset) {
			return fmt.Errorf("slots %d and %d overlap", byOffset[i-1].ID, byOffset[i].ID)
		}
	}

	for _, r := range records {
		content, err := store.Get(r.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %q\n", r, content)
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Println(stats)

	return nil
}
