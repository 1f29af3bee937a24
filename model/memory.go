package model

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ostraka/segstream/errors"
)

// CheckMemory reports whether the host has enough available memory for the
// profile's expected footprint. Insufficient memory is returned as an
// OUT_OF_MEMORY-classified error so callers can skip or defer the load.
// A failed probe returns nil; the load proceeds unchecked.
func CheckMemory(p Profile) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	need := uint64(p.MemoryMB) * 1024 * 1024
	if vm.Available < need {
		return errors.WithCode(
			errors.Newf("insufficient memory for %s: need %d MB, %d MB available",
				p.Name, p.MemoryMB, vm.Available/(1024*1024)),
			errors.CodeOutOfMemory)
	}
	return nil
}

// HostMemoryMB returns total and available host memory in megabytes, for
// startup diagnostics. Returns zeros when the probe fails.
func HostMemoryMB() (total, available uint64) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0
	}
	return vm.Total / (1024 * 1024), vm.Available / (1024 * 1024)
}
