// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package workerpool

import "golang.org/x/sys/unix"

// pinToCPU restricts the calling OS thread's affinity to a single CPU.
// Must be called from the goroutine that is meant to run pinned, and
// that goroutine must stay locked to its OS thread for the pin to hold
// (see worker's use of runtime.LockOSThread).
func pinToCPU(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
