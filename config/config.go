/*
=================================================================================
CONFIGURATION
=================================================================================

Config is the single record a world is constructed from alongside genome
bytes, declared I/O ids, and a seed (spec.md §3 "Lifecycle", §6 "recognized
options"). It is loaded from YAML with environment overrides, in the layered
style of qubicDB-qubicdb's ServerConfig/StorageConfig: a struct of plain
fields with yaml tags, a Default() constructor carrying the engine's
defaults, and a Load() that merges a file over the defaults and env vars
over the file.
=================================================================================
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors spec.md §6's recognized-options table plus an experiment
// identifier used to tag snapshots and log lines.
type Config struct {
	MetabolicTaxPerTick              float64 `yaml:"metabolic_tax_per_tick"`
	InitialNeuronHealth              float64 `yaml:"initial_neuron_health"`
	InitialPotential                 float64 `yaml:"initial_potential"`
	DefaultDecayRate                 float64 `yaml:"default_decay_rate"`
	DefaultFiringThreshold           float64 `yaml:"default_firing_threshold"`
	DefaultRefractoryPeriod          int     `yaml:"default_refractory_period"`
	DefaultThresholdAdaptationFactor float64 `yaml:"default_threshold_adaptation_factor"`
	DefaultThresholdRecoveryRate     float64 `yaml:"default_threshold_recovery_rate"`
	FiringRateMAWeight               float64 `yaml:"firing_rate_ma_weight"`
	CompetitionRadius                float64 `yaml:"competition_radius"`
	SystemGeneCount                  int     `yaml:"system_gene_count"`

	MetricsEnabled            bool `yaml:"metrics_enabled"`
	MetricsCollectionInterval int  `yaml:"metrics_collection_interval"`
	MetricsRingCapacity       int  `yaml:"metrics_ring_capacity"`
	MetricsIncludeSynapses    bool `yaml:"metrics_include_synapses"`

	Seed0 uint64 `yaml:"seed0"`
	Seed1 uint64 `yaml:"seed1"`

	ExperimentID string `yaml:"experiment_id"`
}

// Default returns the engine's baseline configuration. Values come from
// spec.md §4.9's phase descriptions and §6's option table; where the spec
// only names an option without a concrete default, a conservative value is
// chosen and documented here rather than left unset.
func Default() Config {
	return Config{
		MetabolicTaxPerTick:              0.01,
		InitialNeuronHealth:              100,
		InitialPotential:                 0,
		DefaultDecayRate:                 0.1,
		DefaultFiringThreshold:           1.0,
		DefaultRefractoryPeriod:          3,
		DefaultThresholdAdaptationFactor: 0.3,
		DefaultThresholdRecoveryRate:     0.05,
		FiringRateMAWeight:               0.9,
		CompetitionRadius:                5.0,
		SystemGeneCount:                  4,
		MetricsEnabled:                   true,
		MetricsCollectionInterval:        10,
		MetricsRingCapacity:              256,
		MetricsIncludeSynapses:           false,
		Seed0:                            1,
		Seed1:                            2,
	}
}

// Load reads YAML from path over Default(), then applies any HIDRA_-prefixed
// environment overrides (e.g. HIDRA_SEED0=7 overrides seed0).
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	for _, e := range os.Environ() {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "HIDRA_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], "HIDRA_"))
		val := parts[1]
		setField(cfg, key, val)
	}
}

func setField(cfg *Config, key, val string) {
	switch key {
	case "metabolic_tax_per_tick":
		cfg.MetabolicTaxPerTick = mustFloat(val, cfg.MetabolicTaxPerTick)
	case "initial_neuron_health":
		cfg.InitialNeuronHealth = mustFloat(val, cfg.InitialNeuronHealth)
	case "initial_potential":
		cfg.InitialPotential = mustFloat(val, cfg.InitialPotential)
	case "default_decay_rate":
		cfg.DefaultDecayRate = mustFloat(val, cfg.DefaultDecayRate)
	case "default_firing_threshold":
		cfg.DefaultFiringThreshold = mustFloat(val, cfg.DefaultFiringThreshold)
	case "default_refractory_period":
		cfg.DefaultRefractoryPeriod = mustInt(val, cfg.DefaultRefractoryPeriod)
	case "default_threshold_adaptation_factor":
		cfg.DefaultThresholdAdaptationFactor = mustFloat(val, cfg.DefaultThresholdAdaptationFactor)
	case "default_threshold_recovery_rate":
		cfg.DefaultThresholdRecoveryRate = mustFloat(val, cfg.DefaultThresholdRecoveryRate)
	case "firing_rate_ma_weight":
		cfg.FiringRateMAWeight = mustFloat(val, cfg.FiringRateMAWeight)
	case "competition_radius":
		cfg.CompetitionRadius = mustFloat(val, cfg.CompetitionRadius)
	case "system_gene_count":
		cfg.SystemGeneCount = mustInt(val, cfg.SystemGeneCount)
	case "metrics_enabled":
		cfg.MetricsEnabled = val == "true" || val == "1"
	case "metrics_collection_interval":
		cfg.MetricsCollectionInterval = mustInt(val, cfg.MetricsCollectionInterval)
	case "metrics_ring_capacity":
		cfg.MetricsRingCapacity = mustInt(val, cfg.MetricsRingCapacity)
	case "metrics_include_synapses":
		cfg.MetricsIncludeSynapses = val == "true" || val == "1"
	case "seed0":
		cfg.Seed0 = uint64(mustInt(val, int(cfg.Seed0)))
	case "seed1":
		cfg.Seed1 = uint64(mustInt(val, int(cfg.Seed1)))
	case "experiment_id":
		cfg.ExperimentID = val
	}
}

func mustFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func mustInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
