// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package numa

import "fmt"

// bindToNode is a no-op stub on platforms without mbind(2): the host
// kernel has no portable page-binding interface, so binding always
// reports as unavailable and callers fall back to first-touch locality.
func bindToNode(_ []byte, _ int) error {
	return fmt.Errorf("numa: page binding unavailable on this platform")
}
