package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config describes one simulation setup. Durations and delays are in
// simulated time units; RTT (and hence the retransmission timeout) is fixed
// at 16 units by the protocol.
type Config struct {
	Seed        int64
	Trials      int
	Duration    float64 // time units of message generation per trial
	MessageRate float64 // mean messages per time unit
	LossProb    float64 // per-packet, per-direction
	CorruptProb float64
	MeanDelay   float64 // one-way propagation delay, time units
	Jitter      float64 // additional uniform delay, time units
	QueueCap    int     // sender overflow queue capacity, 0 rejects
}

func defaultConfig() Config {
	return Config{
		Seed:        1,
		Trials:      1,
		Duration:    1000,
		MessageRate: 0.2,
		LossProb:    0.1,
		CorruptProb: 0.1,
		MeanDelay:   5,
		Jitter:      4,
		QueueCap:    64,
	}
}

func readConfigFile(path string) (Config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "opening config file")
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decoding config file %s", path)
	}
	return cfg, nil
}

func writeResults(path string, results []trialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating results file")
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errors.Wrap(err, "encoding results")
	}
	return nil
}
