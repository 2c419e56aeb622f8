package pose

import "math"

// AngleAt returns the angle in degrees at vertex b between the rays b->a and
// b->c, using only X and Y. The result is always in [0, 180].
//
// Coincident points are not rejected: atan2(0, 0) is 0, so a degenerate
// ray contributes a fixed direction and the result stays deterministic.
func AngleAt(a, b, c Landmark) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// JointAngle computes AngleAt for three indices of l. It returns false when
// any of them is missing.
func (l Landmarks) JointAngle(a, b, c int) (float64, bool) {
	if !l.Has(a, b, c) {
		return 0, false
	}
	return AngleAt(l[a], l[b], l[c]), true
}

// MeanJointAngle averages the same joint on both sides of the body, e.g. the
// left and right knee. It returns false unless both sides are present.
func (l Landmarks) MeanJointAngle(left, right [3]int) (float64, bool) {
	la, ok := l.JointAngle(left[0], left[1], left[2])
	if !ok {
		return 0, false
	}
	ra, ok := l.JointAngle(right[0], right[1], right[2])
	if !ok {
		return 0, false
	}
	return (la + ra) / 2, true
}
