package pose

import "math"

// Common joint triples, vertex in the middle.
var (
	LeftKneeJoint     = [3]int{LeftHip, LeftKnee, LeftAnkle}
	RightKneeJoint    = [3]int{RightHip, RightKnee, RightAnkle}
	LeftElbowJoint    = [3]int{LeftShoulder, LeftElbow, LeftWrist}
	RightElbowJoint   = [3]int{RightShoulder, RightElbow, RightWrist}
	LeftHipJoint      = [3]int{LeftShoulder, LeftHip, LeftKnee}
	RightHipJoint     = [3]int{RightShoulder, RightHip, RightKnee}
	LeftBodyLineJoint = [3]int{LeftShoulder, LeftHip, LeftAnkle}
	LeftBackJoint     = [3]int{LeftHip, LeftShoulder, LeftEar}
)

// StandingLandmarks returns an upright, front-facing body with straight
// limbs, arms hanging and shoulders/hips level. The left side is at larger X.
func StandingLandmarks() Landmarks {
	l := make(Landmarks, NumLandmarks)

	l[Nose] = Landmark{X: 0.50, Y: 0.12, Visibility: 0.99}
	l[LeftEyeInner] = Landmark{X: 0.51, Y: 0.10, Visibility: 0.99}
	l[LeftEye] = Landmark{X: 0.52, Y: 0.10, Visibility: 0.99}
	l[LeftEyeOuter] = Landmark{X: 0.53, Y: 0.10, Visibility: 0.99}
	l[RightEyeInner] = Landmark{X: 0.49, Y: 0.10, Visibility: 0.99}
	l[RightEye] = Landmark{X: 0.48, Y: 0.10, Visibility: 0.99}
	l[RightEyeOuter] = Landmark{X: 0.47, Y: 0.10, Visibility: 0.99}
	l[MouthLeft] = Landmark{X: 0.52, Y: 0.14, Visibility: 0.99}
	l[MouthRight] = Landmark{X: 0.48, Y: 0.14, Visibility: 0.99}

	// Ear, shoulder, hip, knee and ankle share an X per side so the back and
	// the legs are perfectly straight.
	l[LeftEar] = Landmark{X: 0.56, Y: 0.11, Visibility: 0.95}
	l[RightEar] = Landmark{X: 0.44, Y: 0.11, Visibility: 0.95}
	l[LeftShoulder] = Landmark{X: 0.56, Y: 0.25, Visibility: 0.99}
	l[RightShoulder] = Landmark{X: 0.44, Y: 0.25, Visibility: 0.99}
	l[LeftHip] = Landmark{X: 0.56, Y: 0.52, Visibility: 0.99}
	l[RightHip] = Landmark{X: 0.44, Y: 0.52, Visibility: 0.99}
	l[LeftKnee] = Landmark{X: 0.56, Y: 0.70, Visibility: 0.98}
	l[RightKnee] = Landmark{X: 0.44, Y: 0.70, Visibility: 0.98}
	l[LeftAnkle] = Landmark{X: 0.56, Y: 0.88, Visibility: 0.97}
	l[RightAnkle] = Landmark{X: 0.44, Y: 0.88, Visibility: 0.97}
	l[LeftHeel] = Landmark{X: 0.56, Y: 0.91, Visibility: 0.95}
	l[RightHeel] = Landmark{X: 0.44, Y: 0.91, Visibility: 0.95}
	l[LeftFootIndex] = Landmark{X: 0.58, Y: 0.93, Visibility: 0.95}
	l[RightFootIndex] = Landmark{X: 0.42, Y: 0.93, Visibility: 0.95}

	// Arms hang straight down beside the torso.
	l[LeftElbow] = Landmark{X: 0.56, Y: 0.38, Visibility: 0.98}
	l[RightElbow] = Landmark{X: 0.44, Y: 0.38, Visibility: 0.98}
	l[LeftWrist] = Landmark{X: 0.56, Y: 0.50, Visibility: 0.97}
	l[RightWrist] = Landmark{X: 0.44, Y: 0.50, Visibility: 0.97}
	l[LeftPinky] = Landmark{X: 0.57, Y: 0.53, Visibility: 0.9}
	l[RightPinky] = Landmark{X: 0.43, Y: 0.53, Visibility: 0.9}
	l[LeftIndex] = Landmark{X: 0.56, Y: 0.54, Visibility: 0.9}
	l[RightIndex] = Landmark{X: 0.44, Y: 0.54, Visibility: 0.9}
	l[LeftThumb] = Landmark{X: 0.55, Y: 0.52, Visibility: 0.9}
	l[RightThumb] = Landmark{X: 0.45, Y: 0.52, Visibility: 0.9}

	return l
}

// SquatBottomLandmarks returns StandingLandmarks with both knees bent to 85
// degrees, below the squat "down" threshold.
func SquatBottomLandmarks() Landmarks {
	return StandingLandmarks().
		Bend(LeftHip, LeftKnee, LeftAnkle, 85).
		Bend(RightHip, RightKnee, RightAnkle, 85)
}

// CurlTopLandmarks returns StandingLandmarks with both elbows flexed to 40
// degrees, the top of a bicep curl.
func CurlTopLandmarks() Landmarks {
	return StandingLandmarks().
		Bend(LeftShoulder, LeftElbow, LeftWrist, 40).
		Bend(RightShoulder, RightElbow, RightWrist, 40)
}

// Bend returns a copy of l where landmark c has been rotated around the
// vertex b so that AngleAt(a, b, c) equals deg. The distance from b to c is
// preserved. Missing indices leave the copy unchanged.
func (l Landmarks) Bend(a, b, c int, deg float64) Landmarks {
	out := l.Clone()
	if !out.Has(a, b, c) {
		return out
	}

	va := Landmark{X: out[a].X - out[b].X, Y: out[a].Y - out[b].Y}
	lenA := math.Hypot(va.X, va.Y)
	lenC := math.Hypot(out[c].X-out[b].X, out[c].Y-out[b].Y)
	if lenA == 0 {
		return out
	}
	if lenC == 0 {
		lenC = lenA
	}

	theta := deg * math.Pi / 180.0
	ux, uy := va.X/lenA, va.Y/lenA
	rx := ux*math.Cos(theta) - uy*math.Sin(theta)
	ry := ux*math.Sin(theta) + uy*math.Cos(theta)

	out[c].X = out[b].X + rx*lenC
	out[c].Y = out[b].Y + ry*lenC
	return out
}
