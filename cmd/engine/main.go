// cmd/engine/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/mindcycle/internal/config"
	"github.com/keshon/mindcycle/internal/engine"
	"github.com/keshon/mindcycle/internal/introspect"
	"github.com/keshon/mindcycle/internal/learning"
	"github.com/keshon/mindcycle/internal/storage"
)

func main() {
	log.Printf("[INFO] Starting mindcycle engine...")

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	var eng *engine.Engine
	eng = engine.New(engine.Config{
		TickMin:       cfg.TickMin,
		TickMax:       cfg.TickMax,
		DecayInterval: cfg.DecayInterval,
		PatternCap:    cfg.PatternCap,
		Seed:          cfg.RandomSeed,
	}, engine.Deps{
		Introspector: introspect.New(func() introspect.Status {
			snap := eng.CurrentEmotion()
			return introspect.Status{
				State:          eng.State(),
				Emotion:        string(snap.Type),
				Intensity:      snap.Intensity,
				ActiveGoals:    len(eng.ActiveGoals()),
				CompletedGoals: len(eng.CompletedGoals()),
				DroppedEvents:  eng.DroppedEvents(),
				Cycles:         eng.Cycles(),
			}
		}),
		Learner:   learning.New(),
		Memories:  store,
		Persister: store,
	})

	if err := eng.Start(); err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	s := <-sig
	log.Printf("[INFO] Received signal %s, shutting down...", s)

	if err := eng.Close(); err != nil {
		log.Println("[ERR] Engine dispose:", err)
	}
	store.SaveLearnedPatterns(eng.LearnedPatterns())

	log.Println("[INFO] Engine exited cleanly")
}
