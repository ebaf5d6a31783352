package main

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/sarchlab/smp/simulator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print host resource usage alongside a freshly constructed simulator's state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	info, err := host.Info()
	if err != nil {
		return fmt.Errorf("host info: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("memory info: %w", err)
	}

	sim := simulator.New()
	fmt.Printf("host:       %s (%s/%s)\n", info.Hostname, info.Platform, info.KernelArch)
	fmt.Printf("uptime:     %ds\n", info.Uptime)
	fmt.Printf("memory:     %.1f%% used (%d/%d bytes)\n", vm.UsedPercent, vm.Used, vm.Total)
	fmt.Printf("simulator:  %s\n", sim.State())
	return nil
}
