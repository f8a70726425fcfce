/*
=================================================================================
HIDRA CLI
=================================================================================

The admin/driver client for the simulation engine, in the shape of
qubicDB-qubicdb's qubicdb-cli: a root cobra command carrying connection-ish
state (here, the config/genome file paths) plus subcommands that each load a
World, drive it, and print something useful.
=================================================================================
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/types"
	"github.com/hidra-sim/hidra/world"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var genomePath string
	var inputCount int
	var outputCount int

	root := &cobra.Command{
		Use:   "hidra",
		Short: "hidra — driver CLI for the Hidra tick engine",
		Long:  "Loads a world from a config file and a compiled genome, then runs, steps, or inspects it.",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults built in if omitted)")
	root.PersistentFlags().StringVar(&genomePath, "genome", "", "Path to a compiled genome file (required)")
	root.PersistentFlags().IntVar(&inputCount, "inputs", 0, "Number of sequential input node ids (1..N) to declare")
	root.PersistentFlags().IntVar(&outputCount, "outputs", 0, "Number of sequential output node ids (1..N) to declare")

	newWorld := func() (*world.World, error) {
		if genomePath == "" {
			return nil, fmt.Errorf("hidra: --genome is required")
		}
		raw, err := os.ReadFile(genomePath)
		if err != nil {
			return nil, fmt.Errorf("hidra: reading genome: %w", err)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		inputs := make([]types.InputID, inputCount)
		for i := range inputs {
			inputs[i] = types.InputID(i + 1)
		}
		outputs := make([]types.OutputID, outputCount)
		for i := range outputs {
			outputs[i] = types.OutputID(i + 1)
		}
		w, err := world.New(cfg, raw, inputs, outputs)
		if err != nil {
			return nil, err
		}
		w.SetLogSink(func(tag string, level types.LogLevel, message string) {
			fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", level, tag, message)
		})
		return w, nil
	}

	root.AddCommand(newRunCmd(newWorld))
	root.AddCommand(newStepCmd(newWorld))
	root.AddCommand(newSnapshotCmd(newWorld))
	root.AddCommand(newGenomeCmd())

	return root
}

func newRunCmd(newWorld func() (*world.World, error)) *cobra.Command {
	var ticks int
	var snapshotOut string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a world for a fixed number of ticks and print its final outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorld()
			if err != nil {
				return err
			}
			if err := w.RunFor(ticks); err != nil {
				return fmt.Errorf("hidra: run halted: %w", err)
			}
			if snapshotOut != "" {
				blob, err := w.Snapshot()
				if err != nil {
					return fmt.Errorf("hidra: snapshot: %w", err)
				}
				if err := os.WriteFile(snapshotOut, blob, 0o644); err != nil {
					return fmt.Errorf("hidra: writing snapshot: %w", err)
				}
			}
			return printWorldSummary(w)
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 100, "Number of ticks to run")
	cmd.Flags().StringVar(&snapshotOut, "snapshot-out", "", "If set, write a final snapshot to this path")
	return cmd
}

func newStepCmd(newWorld func() (*world.World, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance a world by one tick and print its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorld()
			if err != nil {
				return err
			}
			if err := w.Step(); err != nil {
				return fmt.Errorf("hidra: step failed: %w", err)
			}
			return printWorldSummary(w)
		},
	}
	return cmd
}

func newSnapshotCmd(newWorld func() (*world.World, error)) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot-related commands",
	}
	snapshotCmd.AddCommand(&cobra.Command{
		Use:   "inspect [path]",
		Short: "Print tick, output values, and neuron count from a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("hidra: reading snapshot: %w", err)
			}
			w, err := world.Restore(raw)
			if err != nil {
				return fmt.Errorf("hidra: restoring snapshot: %w", err)
			}
			return printWorldSummary(w)
		},
	})
	return snapshotCmd
}

func newGenomeCmd() *cobra.Command {
	genomeCmd := &cobra.Command{
		Use:   "genome",
		Short: "Genome-related commands",
	}
	genomeCmd.AddCommand(&cobra.Command{
		Use:   "validate [path]",
		Short: "Parse a compiled genome and report gene count and any decode errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("hidra: reading genome: %w", err)
			}
			genes, err := gene.ParseGenome(raw)
			if err != nil {
				return fmt.Errorf("hidra: genome is invalid: %w", err)
			}
			fmt.Printf("genome valid: %d genes, %d bytes\n", len(genes), len(raw))
			for _, g := range genes {
				fmt.Printf("  gene %d: %d instructions\n", g.ID, len(g.Instructions))
			}
			return nil
		},
	})
	return genomeCmd
}

type worldSummary struct {
	Tick         uint64                     `json:"tick"`
	NeuronCount  int                        `json:"neuron_count"`
	Outputs      map[types.OutputID]float64 `json:"outputs"`
	Halted       bool                       `json:"halted"`
	HaltedReason string                     `json:"halted_reason,omitempty"`
}

func printWorldSummary(w *world.World) error {
	halted, cause := w.Halted()
	s := worldSummary{
		Tick:        w.Tick(),
		NeuronCount: w.NeuronCount(),
		Outputs:     w.OutputValues(),
		Halted:      halted,
	}
	if cause != nil {
		s.HaltedReason = cause.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
