package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/smp/manifest"
	"github.com/sarchlab/smp/simulator"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load a manifest and print the resulting component tree",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	if manifestPath == "" {
		return fmt.Errorf("--manifest is required")
	}

	sim := simulator.New()
	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := manifest.Parse(f)
	if err != nil {
		return err
	}
	if err := m.Apply(sim); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Root", "Container", "Component", "State"})
	for _, root := range []*simulator.Component{sim.Models(), sim.Services()} {
		for _, ct := range root.Containers() {
			for _, c := range ct.Components() {
				t.AppendRow(table.Row{root.Name(), ct.Name(), c.Name(), c.State()})
			}
		}
	}
	t.Render()
	return nil
}
