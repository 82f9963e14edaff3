// Package scontrol extracts resource metrics from `scontrol show node` output.
//
// The output is line-oriented key=value text whose exact layout varies
// between Slurm releases. Every parser here scans the raw text on its own,
// takes the first record that matches, and falls back to zero values when
// nothing matches. None of them return errors.
package scontrol

import (
	"strconv"
	"strings"
)

type CPU struct {
	Allocated int
	Total     int
	Load      float64
}

type Memory struct {
	Total     int64
	Allocated int64
	Free      int64
}

// Presence records which resource classes were found in the output, so a
// genuine zero can be told apart from a missing field.
type Presence struct {
	CPU          bool `json:"cpu"`
	Memory       bool `json:"memory"`
	GPU          bool `json:"gpu"`
	GPUAllocated bool `json:"gpuAllocated"`
}

type Metrics struct {
	CPU          CPU
	Memory       Memory
	GPUTotal     int
	GPUAllocated int
	State        string
	Presence     Presence
}

// Parse runs every parser against the same text.
func Parse(text string) Metrics {
	var m Metrics
	m.CPU, m.Presence.CPU = ParseCPU(text)
	m.Memory, m.Presence.Memory = ParseMemory(text)
	m.GPUTotal, m.Presence.GPU = ParseGPU(text)
	m.GPUAllocated, m.Presence.GPUAllocated = ParseGPUAllocated(text)
	m.State, _ = ParseState(text)
	return m
}

// ParseCPU reads CPUAlloc, CPUTot and CPULoad from the first line carrying
// all three. A record whose allocation exceeds the total is rejected.
func ParseCPU(text string) (CPU, bool) {
	fields, ok := firstRecord(text, "CPUAlloc", "CPUTot", "CPULoad")
	if !ok {
		return CPU{}, false
	}

	alloc, err := strconv.Atoi(fields["CPUAlloc"])
	if err != nil || alloc < 0 {
		return CPU{}, false
	}
	total, err := strconv.Atoi(fields["CPUTot"])
	if err != nil || total < 0 || alloc > total {
		return CPU{}, false
	}
	load, err := strconv.ParseFloat(fields["CPULoad"], 64)
	if err != nil || load < 0 {
		return CPU{}, false
	}

	return CPU{Allocated: alloc, Total: total, Load: load}, true
}

// ParseMemory reads RealMemory, AllocMem and FreeMem (megabytes) from the
// first line carrying all three.
func ParseMemory(text string) (Memory, bool) {
	fields, ok := firstRecord(text, "RealMemory", "AllocMem", "FreeMem")
	if !ok {
		return Memory{}, false
	}

	var vals [3]int64
	for i, key := range []string{"RealMemory", "AllocMem", "FreeMem"} {
		v, err := strconv.ParseInt(fields[key], 10, 64)
		if err != nil || v < 0 {
			return Memory{}, false
		}
		vals[i] = v
	}

	return Memory{Total: vals[0], Allocated: vals[1], Free: vals[2]}, true
}

// ParseGPU returns the count of the first gpu entry in Gres=, accepting both
// gpu:N and gpu:type:N with an optional socket suffix such as (S:0-1).
func ParseGPU(text string) (int, bool) {
	fields, ok := firstRecord(text, "Gres")
	if !ok {
		return 0, false
	}

	for _, entry := range strings.Split(fields["Gres"], ",") {
		if i := strings.IndexByte(entry, '('); i >= 0 {
			entry = entry[:i]
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] != "gpu" {
			continue
		}
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ParseGPUAllocated reads gres/gpu=N out of AllocTRES. The untyped entry
// wins over typed ones like gres/gpu:a100=N.
func ParseGPUAllocated(text string) (int, bool) {
	fields, ok := firstRecord(text, "AllocTRES")
	if !ok {
		return 0, false
	}

	typed := ""
	for _, tres := range strings.Split(fields["AllocTRES"], ",") {
		key, val, found := strings.Cut(tres, "=")
		if !found {
			continue
		}
		if key == "gres/gpu" {
			return atoiNonNegative(val)
		}
		if typed == "" && strings.HasPrefix(key, "gres/gpu:") {
			typed = val
		}
	}
	if typed != "" {
		return atoiNonNegative(typed)
	}
	return 0, false
}

func ParseState(text string) (string, bool) {
	fields, ok := firstRecord(text, "State")
	if !ok || fields["State"] == "" {
		return "", false
	}
	return fields["State"], true
}

// firstRecord returns the key=value fields of the first line that holds
// every one of keys.
func firstRecord(text string, keys ...string) (map[string]string, bool) {
	for _, line := range strings.Split(text, "\n") {
		fields := splitFields(line)
		if hasAll(fields, keys) {
			return fields, true
		}
	}
	return nil, false
}

func splitFields(line string) map[string]string {
	fields := make(map[string]string)
	for _, tok := range strings.Fields(line) {
		key, val, found := strings.Cut(tok, "=")
		if !found || key == "" {
			continue
		}
		if _, dup := fields[key]; !dup {
			fields[key] = val
		}
	}
	return fields
}

func hasAll(fields map[string]string, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}

func atoiNonNegative(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
