// Package device reports host compute capabilities.
package device

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Info describes the host the loops will run on.
type Info struct {
	Brand         string
	PhysicalCores int
	LogicalCores  int
	// Features lists the SIMD extensions relevant to dense float kernels.
	Features []string
	// Accelerator reports whether a non-CPU device can be targeted.
	Accelerator bool
}

// Probe inspects the host CPU once per call.
func Probe() Info {
	info := Info{
		Brand:         cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		Accelerator:   tensor.Accelerator.Available(),
	}
	for _, f := range []cpuid.FeatureID{cpuid.SSE4, cpuid.AVX, cpuid.AVX2, cpuid.FMA3, cpuid.AVX512F} {
		if cpuid.CPU.Supports(f) {
			info.Features = append(info.Features, f.String())
		}
	}
	return info
}
