package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// RuntimeReport formats the post-bake performance block: wall time,
// effective frames per second, and process memory.
func RuntimeReport(elapsed time.Duration, frames int) string {
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frames) / elapsed.Seconds()
	}

	rssMB := 0.0
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			rssMB = float64(mi.RSS) / (1024 * 1024)
		}
	}

	cores, err := cpu.Counts(true)
	if err != nil {
		cores = 0
	}

	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Frames Keyed: %d\n"+
			"Effective FPS: %.2f\n"+
			"Process RSS: %.1f MB\n"+
			"Logical CPUs: %d\n"+
			"----------------------------",
		elapsed.Seconds(), frames, fps, rssMB, cores,
	)
}
