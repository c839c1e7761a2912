/*
	Basic Script that churns a running slotstore server with creates, updates
	and frees so that freed slots keep getting reused.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/0xRadioAc7iv/go-slotstore/slotstore"
)

const (
	concurrency = 6

	// Per-cycle behavior
	createsPerCycle = 20
	updatesPerCycle = 10
	freesPerCycle   = 10
	cyclesPerWorker = 500

	maxValueLen = 64

	progressEvery = 50
)

func main() {
	host := flag.String("host", "127.0.0.1", "slotstore server host")
	port := flag.Int("port", 9999, "slotstore server port")
	opsPerSecond := flag.Float64("rate", 2000, "Operations per second across all workers (0 = unlimited)")
	flag.Parse()

	limit := rate.Limit(*opsPerSecond)
	if *opsPerSecond <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, concurrency)

	start := time.Now()
	fmt.Println("Starting slotstore churn-heavy load generator")

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			return runWorker(ctx, i, limiter, slotstore.WithHost(*host), slotstore.WithPort(*port))
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Println("Load stopped:", err)
		return
	}
	fmt.Printf("Load finished in %v\n", time.Since(start))
}

func runWorker(ctx context.Context, id int, limiter *rate.Limiter, opts ...slotstore.Option) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	client, err := slotstore.Connect(opts...)
	if err != nil {
		return fmt.Errorf("[worker %d] connect error: %w", id, err)
	}
	defer client.Close()

	var owned []uint32

	for cycle := 1; cycle <= cyclesPerWorker; cycle++ {

		// ---- CREATE PHASE ----
		for i := 0; i < createsPerCycle; i++ {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			r, err := client.Create(makeValue(rng, id))
			if err != nil {
				return fmt.Errorf("[worker %d] CREATE error: %w", id, err)
			}
			owned = append(owned, r.ID)
		}

		// ---- UPDATE PHASE (grows or shrinks, may move slots) ----
		for i := 0; i < updatesPerCycle && len(owned) > 0; i++ {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			idx := rng.Intn(len(owned))
			r, err := client.Update(owned[idx], makeValue(rng, id))
			if err != nil {
				return fmt.Errorf("[worker %d] UPDATE error: %w", id, err)
			}
			owned[idx] = r.ID
		}

		// ---- FREE PHASE (feeds the allocator's free slots) ----
		for i := 0; i < freesPerCycle && len(owned) > 0; i++ {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			idx := rng.Intn(len(owned))
			if _, err := client.Free(owned[idx]); err != nil {
				return fmt.Errorf("[worker %d] FREE error: %w", id, err)
			}
			owned = append(owned[:idx], owned[idx+1:]...)
		}

		if cycle%progressEvery == 0 {
			fmt.Printf("[worker %d] completed %d cycles, owns %d slots\n", id, cycle, len(owned))
		}
	}

	return nil
}

func makeValue(rng *rand.Rand, worker int) []byte {
	prefix := fmt.Sprintf("w%d-", worker)
	return []byte(prefix + strings.Repeat("x", rng.Intn(maxValueLen)))
}
