// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
)

// PlaneEpsilon is the distance below which a point counts as lying on a
// plane, 1/32 of a map unit.
const PlaneEpsilon = 1.0 / 32.0

// PointInBox reports whether p lies inside the box spanned by min and max.
// Both corner orders are accepted, bounds are inclusive.
func PointInBox(p, min, max Vec3) bool {
	return (min[0] <= p[0] && p[0] <= max[0] &&
		min[1] <= p[1] && p[1] <= max[1] &&
		min[2] <= p[2] && p[2] <= max[2]) ||
		(min[0] >= p[0] && p[0] >= max[0] &&
			min[1] >= p[1] && p[1] >= max[1] &&
			min[2] >= p[2] && p[2] >= max[2])
}

// PointInPlane reports whether p lies on the plane dot(x, normal) == dist.
func PointInPlane(p, normal Vec3, dist float32) bool {
	return math32.Abs(Dot(p, normal)-dist) < PlaneEpsilon
}
