// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

// FloorDiv returns floor(x / d). Used for texel-space bounds of lightmaps.
func FloorDiv(x, d float32) float32 {
	return math32.Floor(x / d)
}

// CeilDiv returns ceil(x / d).
func CeilDiv(x, d float32) float32 {
	return math32.Ceil(x / d)
}
