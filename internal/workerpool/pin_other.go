// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package workerpool

// pinToCPU is a no-op on platforms without a CPU-affinity syscall;
// workers run unpinned and the OS scheduler places them freely.
func pinToCPU(_ int) {}
