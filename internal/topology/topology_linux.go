// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package topology

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const nodeRoot = "/sys/devices/system/node"

func probe() *Snapshot {
	nodes := readNodes()
	if len(nodes) == 0 {
		nodes = []Node{synthesizeUMANode()}
	}
	affinity := readAffinity()
	return newSnapshot(nodes, affinity)
}

// readNodes parses /sys/devices/system/node/node*/cpulist for each
// discoverable NUMA node. Returns nil if the node tree is absent
// (containers, some VM kernels, non-NUMA hosts).
func readNodes() []Node {
	entries, err := os.ReadDir(nodeRoot)
	if err != nil {
		return nil
	}

	var nodes []Node
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		idStr := strings.TrimPrefix(name, "node")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}

		cpus, err := readCPUList(filepath.Join(nodeRoot, name, "cpulist"))
		if err != nil {
			continue
		}
		nodes = append(nodes, Node{ID: id, CPUs: cpus})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// readCPUList parses a Linux range-list file such as "0-3,8-11" into the
// expanded list of integers.
func readCPUList(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, sc.Err()
	}
	return parseRangeList(strings.TrimSpace(sc.Text()))
}

func parseRangeList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			loV, err := strconv.Atoi(lo)
			if err != nil {
				return nil, err
			}
			hiV, err := strconv.Atoi(hi)
			if err != nil {
				return nil, err
			}
			for v := loV; v <= hiV; v++ {
				out = append(out, v)
			}
		} else {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func readAffinity() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return synthesizeCPURange(runtime.NumCPU())
	}
	var cpus []int
	for i := 0; i < unix.CPU_SETSIZE; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	if len(cpus) == 0 {
		return synthesizeCPURange(runtime.NumCPU())
	}
	return cpus
}

func synthesizeUMANode() Node {
	cpus := synthesizeCPURange(runtime.NumCPU())
	return Node{ID: 0, CPUs: cpus}
}

func synthesizeCPURange(n int) []int {
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return cpus
}
