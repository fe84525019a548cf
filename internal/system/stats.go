package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a point-in-time resource reading of the host and this process
type Usage struct {
	LogicalCPUs   int
	HostTotal     uint64
	HostAvailable uint64
	HostUsedPct   float64
	ProcessRSS    uint64
	Goroutines    int
}

// ReadUsage collects host memory and process RSS. Fields that cannot be
// read on this platform stay zero.
func ReadUsage() (Usage, error) {
	u := Usage{Goroutines: runtime.NumGoroutine()}

	if n, err := cpu.Counts(true); err == nil {
		u.LogicalCPUs = n
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return u, fmt.Errorf("virtual memory: %w", err)
	}
	u.HostTotal = vm.Total
	u.HostAvailable = vm.Available
	u.HostUsedPct = vm.UsedPercent

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return u, fmt.Errorf("process: %w", err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return u, fmt.Errorf("process memory: %w", err)
	}
	u.ProcessRSS = info.RSS
	return u, nil
}

// Report is the export performance summary
type Report struct {
	BuildVersion string
	Frames       int
	Total        time.Duration
	Render       time.Duration
	Encode       time.Duration
	Usage        Usage
}

func (r Report) EffectiveFPS() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Total.Seconds()
}

func (r Report) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Frames: %d\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding (GPU/CPU): %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"CPUs: %d | Goroutines: %d\n"+
			"Process RSS: %s | Host: %s free of %s (%.1f%% used)\n"+
			"----------------------------\n",
		r.BuildVersion, r.Frames, r.Total.Seconds(), r.Render.Seconds(), r.Encode.Seconds(), r.EffectiveFPS(),
		r.Usage.LogicalCPUs, r.Usage.Goroutines,
		HumanBytes(r.Usage.ProcessRSS), HumanBytes(r.Usage.HostAvailable), HumanBytes(r.Usage.HostTotal), r.Usage.HostUsedPct,
	)
}

// LogLine is the single-line form appended to benchmark.log
func (r Report) LogLine(input string) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f | RSS: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		r.BuildVersion, input, r.Frames,
		r.Total.Seconds(), r.Render.Seconds(), r.Encode.Seconds(), r.EffectiveFPS(),
		HumanBytes(r.Usage.ProcessRSS),
	)
}

// AppendLog appends line to path, creating the file if needed
func AppendLog(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

// HumanBytes formats a byte count with a binary unit
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
