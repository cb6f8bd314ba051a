package main

import (
	"fmt"
	"strings"

	"github.com/kiln-ml/kiln/internal/device"
)

func runInfo() {
	info := device.Probe()
	fmt.Printf("CPU:            %s\n", info.Brand)
	fmt.Printf("Physical cores: %d\n", info.PhysicalCores)
	fmt.Printf("Logical cores:  %d\n", info.LogicalCores)
	fmt.Printf("SIMD:           %s\n", strings.Join(info.Features, ", "))
	fmt.Printf("Accelerator:    %v\n", info.Accelerator)
}
