// Command simulate runs one virtual-only match to completion and prints
// its journal. Useful for balancing maps and strategies without a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/engine"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/maps"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/storage"
)

const maxTicks = 1_000_000

var (
	mapName     = flag.String("map", "crossing", "map to play on")
	bots        = flag.Int("bots", 4, "number of virtual participants (2-6)")
	seed        = flag.Int64("seed", 0, "dice seed, 0 picks one from the clock")
	elimination = flag.Bool("elimination", false, "combat losses eliminate instead of respawning")
	quiet       = flag.Bool("quiet", false, "print only the final result")
)

// printStore writes each journal entry to stdout as it happens.
type printStore struct{ quiet bool }

func (p printStore) AppendEntry(_ context.Context, entry event.Entry) (event.Entry, error) {
	if !p.quiet {
		fmt.Printf("%-22s %s\n", entry.Type, entry.PayloadJSON)
	}
	return entry, nil
}

// memResults captures the final match record for the summary line.
type memResults struct{ result *storage.MatchResult }

func (m *memResults) PutMatchResult(_ context.Context, result storage.MatchResult) error {
	m.result = &result
	return nil
}

func (m *memResults) GetMatchResult(_ context.Context, _ string) (storage.MatchResult, error) {
	if m.result == nil {
		return storage.MatchResult{}, storage.ErrNotFound
	}
	return *m.result, nil
}

func (m *memResults) ListMatchResults(_ context.Context, _ int) ([]storage.MatchResult, error) {
	if m.result == nil {
		return nil, nil
	}
	return []storage.MatchResult{*m.result}, nil
}

func main() {
	flag.Parse()
	if *bots < session.MinParticipants || *bots > session.MaxParticipants {
		log.Fatalf("bots must be between %d and %d", session.MinParticipants, session.MaxParticipants)
	}
	diceSeed := *seed
	if diceSeed == 0 {
		diceSeed = time.Now().UnixNano()
	}

	catalog, err := maps.NewEmbedded()
	if err != nil {
		log.Fatalf("load map catalog: %v", err)
	}

	results := &memResults{}
	eng := engine.New(engine.Config{
		Maps:        catalog,
		Journal:     event.NewJournal(printStore{quiet: *quiet}, nil),
		Results:     results,
		Seed:        diceSeed,
		Synchronous: true,
	})

	ctx := context.Background()
	id, err := eng.CreateSession(ctx, engine.CreateSessionInput{MapName: *mapName, Elimination: *elimination})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}

	profiles := []session.Profile{session.ProfileAggressive, session.ProfileDefensive}
	for i := 0; i < *bots; i++ {
		name := fmt.Sprintf("bot-%d", i+1)
		if _, err := eng.AddVirtual(ctx, engine.AddVirtualInput{SessionID: id, Name: name, Profile: profiles[i%len(profiles)]}); err != nil {
			log.Fatalf("add %s: %v", name, err)
		}
	}
	if err := eng.StartSession(ctx, id); err != nil {
		log.Fatalf("start session: %v", err)
	}

	for i := 0; i < maxTicks && results.result == nil; i++ {
		eng.Tick(ctx)
	}
	if results.result == nil {
		log.Fatalf("match did not finish within %d ticks", maxTicks)
	}

	r := results.result
	fmt.Printf("\nmap=%s seed=%d winner=%s reason=%q turns=%d\n", r.MapName, diceSeed, r.Winner, r.Reason, r.Turns)
	os.Exit(0)
}
