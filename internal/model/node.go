package model

import "simlab-dashboard/internal/pkg/scontrol"

// NodeMetrics is the resource allocation of one cluster node. Memory
// figures are in megabytes as reported by scontrol.
type NodeMetrics struct {
	Node  string `json:"node"`
	State string `json:"state,omitempty"`

	CPUAllocated int     `json:"cpuAllocated"`
	CPUTotal     int     `json:"cpuTotal"`
	CPUFree      int     `json:"cpuFree"`
	CPULoad      float64 `json:"cpuLoad"`

	MemoryTotal     int64 `json:"memoryTotal"`
	MemoryAllocated int64 `json:"memoryAllocated"`
	MemoryFree      int64 `json:"memoryFree"`

	GPUTotal     int `json:"gpuTotal"`
	GPUAllocated int `json:"gpuAllocated"`

	Present scontrol.Presence `json:"present"`
	Usage   Usage             `json:"usage"`
}

// Usage holds allocated/free pairs ready to feed a pie chart.
type Usage struct {
	CPU    Slice `json:"cpu"`
	Memory Slice `json:"memory"`
	GPU    Slice `json:"gpu"`
}

type Slice struct {
	Allocated int64 `json:"allocated"`
	Free      int64 `json:"free"`
}

func NewNodeMetrics(node string, m scontrol.Metrics) *NodeMetrics {
	nm := &NodeMetrics{
		Node:            node,
		State:           m.State,
		CPUAllocated:    m.CPU.Allocated,
		CPUTotal:        m.CPU.Total,
		CPUFree:         m.CPU.Total - m.CPU.Allocated,
		CPULoad:         m.CPU.Load,
		MemoryTotal:     m.Memory.Total,
		MemoryAllocated: m.Memory.Allocated,
		MemoryFree:      m.Memory.Free,
		GPUTotal:        m.GPUTotal,
		GPUAllocated:    m.GPUAllocated,
		Present:         m.Presence,
	}

	gpuFree := m.GPUTotal - m.GPUAllocated
	if gpuFree < 0 {
		gpuFree = 0
	}

	nm.Usage = Usage{
		CPU:    Slice{Allocated: int64(nm.CPUAllocated), Free: int64(nm.CPUFree)},
		Memory: Slice{Allocated: nm.MemoryAllocated, Free: nm.MemoryFree},
		GPU:    Slice{Allocated: int64(m.GPUAllocated), Free: int64(gpuFree)},
	}
	return nm
}
