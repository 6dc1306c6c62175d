// Command trajectory runs one of the five propagator samplers against a
// demoprocess queue and writes the resulting event trace as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/kgustafsson/semimarkov/demoprocess"
	"github.com/kgustafsson/semimarkov/propagator"
)

func newSampler(name string, n int) (propagator.Sampler, error) {
	switch name {
	case "direct":
		return propagator.NewDirectMethod(), nil
	case "fixeddirect":
		return propagator.NewFixedDirectMethod(n)
	case "firstreaction":
		return propagator.NewFirstReactionMethod(), nil
	case "nextreaction":
		return propagator.NewNextReactionMethod(), nil
	case "naive":
		return propagator.NewNaiveSampler(), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q (must be direct, fixeddirect, firstreaction, nextreaction, or naive)", name)
	}
}

type eventRecord struct {
	Step       int     `json:"step"`
	Time       float64 `json:"time"`
	Kind       string  `json:"kind"`
	Population int     `json:"population"`
}

func runBirthDeath(samplerName string, events int, seed int64, arrivalRate, serviceRate float64, verbose bool) ([]eventRecord, error) {
	sampler, err := newSampler(samplerName, 2)
	if err != nil {
		return nil, err
	}
	if samplerName != "direct" && samplerName != "fixeddirect" {
		return nil, fmt.Errorf("process %q is exponential-only; use -sampler direct or fixeddirect", "birthdeath")
	}

	rng := rand.New(rand.NewSource(seed))
	queue := demoprocess.NewBirthDeathQueue(arrivalRate, serviceRate, sampler, rng)
	if verbose {
		queue.Trace = func(s string) { fmt.Fprintf(os.Stderr, "[trajectory] %s\n", s) }
	}

	records := make([]eventRecord, 0, events)
	for i := 0; i < events; i++ {
		arrival, ok := queue.Step()
		if !ok {
			break
		}
		kind := "departure"
		if arrival {
			kind = "arrival"
		}
		records = append(records, eventRecord{Step: i, Time: queue.Time(), Kind: kind, Population: queue.Population()})
	}
	return records, nil
}

func runMaintenance(samplerName string, events int, seed int64, verbose bool) ([]eventRecord, error) {
	sampler, err := newSampler(samplerName, 0)
	if err != nil {
		return nil, err
	}
	if samplerName == "direct" || samplerName == "fixeddirect" {
		return nil, fmt.Errorf("process %q has a non-exponential service clock; use -sampler firstreaction, nextreaction, or naive", "maintenance")
	}

	rng := rand.New(rand.NewSource(seed))
	cfg := demoprocess.MaintenanceQueueConfig{
		ArrivalRate:         1.0,
		ServiceShape:        2.0,
		ServiceBaseScale:    0.8,
		CongestionFactor:    0.3,
		MaintenancePeriod:   5.0,
		MaintenanceDuration: 0.5,
	}
	queue := demoprocess.NewMaintenanceQueue(cfg, sampler, rng)
	if verbose {
		queue.Trace = func(s string) { fmt.Fprintf(os.Stderr, "[trajectory] %s\n", s) }
	}

	records := make([]eventRecord, 0, events)
	for i := 0; i < events; i++ {
		kind, ok := queue.Step()
		if !ok {
			break
		}
		records = append(records, eventRecord{Step: i, Time: queue.Time(), Kind: kind, Population: queue.Population()})
	}
	return records, nil
}

func main() {
	samplerName := flag.String("sampler", "nextreaction", "sampler: direct, fixeddirect, firstreaction, nextreaction, or naive")
	processName := flag.String("process", "maintenance", "process: birthdeath (exponential-only) or maintenance (semi-Markov)")
	events := flag.Int("events", 1000, "number of firings to simulate")
	seed := flag.Int64("seed", 1, "RNG seed")
	arrivalRate := flag.Float64("arrival-rate", 2.0, "birthdeath: arrival rate")
	serviceRate := flag.Float64("service-rate", 5.0, "birthdeath: service rate")
	outputFile := flag.String("output", "", "path to output JSON file (stdout if unset)")
	verbose := flag.Bool("verbose", false, "print a trace line per transition to stderr")
	flag.Parse()

	startTime := time.Now()
	var records []eventRecord
	var err error
	switch *processName {
	case "birthdeath":
		records, err = runBirthDeath(*samplerName, *events, *seed, *arrivalRate, *serviceRate, *verbose)
	case "maintenance":
		records, err = runMaintenance(*samplerName, *events, *seed, *verbose)
	default:
		err = fmt.Errorf("unknown process %q (must be birthdeath or maintenance)", *processName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output, err := json.MarshalIndent(map[string]interface{}{
		"sampler": *samplerName,
		"process": *processName,
		"seed":    *seed,
		"events":  records,
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling results: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Simulated %d events in %v\n", len(records), time.Since(startTime))

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", *outputFile)
		return
	}
	fmt.Println(string(output))
}
