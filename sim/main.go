package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/lossysim/selective-repeat/arq"
	"github.com/lossysim/selective-repeat/des"
	"golang.org/x/crypto/blake2b"
)

var L = log.New(os.Stderr, "", 0)

type trialResult struct {
	Seed          int64
	Submitted     int
	Delivered     int
	Violations    int
	Damaged       int
	PacketsSent   int
	PacketsResent int
	AcksSent      int
	WindowFull    int
	Dropped       int
	LatencyP50    float64
	LatencyP95    float64
	SimTime       float64
	Fingerprint   string
}

func runTrial(cfg Config, seed int64) trialResult {
	sim := &des.Simulator{}
	deadline := time.Duration(cfg.Duration * float64(arq.TimeUnit))

	wl := &workload{
		rng:      rand.New(rand.NewSource(seed)),
		rate:     cfg.MessageRate,
		deadline: deadline,
	}
	fp, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // never fails with a nil key
	}
	snk := &sink{wl: wl, latency: newLatencySketch(), fp: fp}

	fwd := &link{
		rng:         rand.New(rand.NewSource(seed + 1)),
		lossProb:    cfg.LossProb,
		corruptProb: cfg.CorruptProb,
		delay:       time.Duration(cfg.MeanDelay * float64(arq.TimeUnit)),
		jitter:      time.Duration(cfg.Jitter * float64(arq.TimeUnit)),
	}
	rev := &link{
		rng:         rand.New(rand.NewSource(seed + 2)),
		lossProb:    cfg.LossProb,
		corruptProb: cfg.CorruptProb,
		delay:       time.Duration(cfg.MeanDelay * float64(arq.TimeUnit)),
		jitter:      time.Duration(cfg.Jitter * float64(arq.TimeUnit)),
	}

	var aStats, bStats arq.Stats
	recv := &receiverNode{rev: rev, sink: snk}
	recv.engine = arq.NewReceiver(recv, snk, &bStats)
	fwd.dst = recv
	send := &senderNode{fwd: fwd, src: wl}
	send.engine = arq.NewSender(send, send, &aStats, cfg.QueueCap)
	rev.dst = send

	sim.Schedule(send, des.Output{Ev: messageArrival{}, Delay: wl.interval()})
	// grace period past the traffic deadline bounds the run even under
	// extreme loss settings
	sim.RunUntil(deadline + 500*arq.RTT)

	return trialResult{
		Seed:          seed,
		Submitted:     int(wl.count),
		Delivered:     snk.delivered,
		Violations:    snk.violations,
		Damaged:       snk.damaged,
		PacketsSent:   aStats.PacketsSent,
		PacketsResent: aStats.PacketsResent,
		AcksSent:      bStats.AcksSent,
		WindowFull:    aStats.WindowFull,
		Dropped:       aStats.Dropped,
		LatencyP50:    snk.latency.quantile(0.50),
		LatencyP95:    snk.latency.quantile(0.95),
		SimTime:       sim.Now().Seconds(),
		Fingerprint:   hex.EncodeToString(fp.Sum(nil)),
	}
}

func main() {
	configFile := flag.String("c", "", "read config from `file`; flags override it")
	seed := flag.Int64("seed", 1, "base RNG seed; trial i uses seed+i")
	trials := flag.Int("n", 1, "number of trials")
	dur := flag.Float64("dur", 1000, "time units of message generation per trial")
	rate := flag.Float64("rate", 0.2, "mean messages per time unit")
	loss := flag.Float64("loss", 0.1, "per-packet loss probability, each direction")
	corrupt := flag.Float64("corrupt", 0.1, "per-packet corruption probability, each direction")
	delay := flag.Float64("delay", 5, "mean one-way delay in time units")
	jitter := flag.Float64("jitter", 4, "max additional uniform delay in time units")
	queueCap := flag.Int("q", 64, "sender overflow queue capacity, 0 to reject when full")
	out := flag.String("out", "", "write per-trial results as JSON to `file`")
	flag.Parse()

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = readConfigFile(*configFile)
		if err != nil {
			L.Fatalln(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "n":
			cfg.Trials = *trials
		case "dur":
			cfg.Duration = *dur
		case "rate":
			cfg.MessageRate = *rate
		case "loss":
			cfg.LossProb = *loss
		case "corrupt":
			cfg.CorruptProb = *corrupt
		case "delay":
			cfg.MeanDelay = *delay
		case "jitter":
			cfg.Jitter = *jitter
		case "q":
			cfg.QueueCap = *queueCap
		}
	})

	results := make([]trialResult, 0, cfg.Trials)
	goodput := []float64{}
	overhead := []float64{}
	p50 := []float64{}
	p95 := []float64{}
	for i := 0; i < cfg.Trials; i++ {
		r := runTrial(cfg, cfg.Seed+int64(i))
		L.Printf("trial %d: %d/%d delivered, %d resent, %d acks, p50 %.2f, fp %s\n",
			i, r.Delivered, r.Submitted, r.PacketsResent, r.AcksSent, r.LatencyP50, r.Fingerprint[:8])
		if r.Violations > 0 || r.Damaged > 0 {
			L.Printf("trial %d: DELIVERY VIOLATIONS: %d out of order, %d damaged\n", i, r.Violations, r.Damaged)
		}
		results = append(results, r)
		goodput = append(goodput, float64(r.Delivered)/cfg.Duration)
		if r.PacketsSent > 0 {
			overhead = append(overhead, float64(r.PacketsResent)/float64(r.PacketsSent))
		}
		p50 = append(p50, r.LatencyP50)
		p95 = append(p95, r.LatencyP95)
	}

	fmt.Println("# moments: mean, stddev, p5, p50, p95 across trials")
	fmt.Println("# goodput (msg/unit)", moments(goodput))
	fmt.Println("# retransmit overhead", moments(overhead))
	fmt.Println("# latency p50 (units)", moments(p50))
	fmt.Println("# latency p95 (units)", moments(p95))

	if *out != "" {
		if err := writeResults(*out, results); err != nil {
			L.Fatalln(err)
		}
	}
}
