// Package pose provides body landmark types and the joint geometry used by
// posture analysis and repetition counting.
package pose

// Body landmark indices following the MediaPipe pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Landmark is a single normalized body-joint coordinate. X and Y are in
// [0,1] relative to the frame; Y grows downwards.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Landmarks is one detected body, indexed by the constants above.
// A nil or short slice is tolerated; see At.
type Landmarks []Landmark

// At returns the landmark at index i. The second result is false when the
// set is empty or the index is outside of it.
func (l Landmarks) At(i int) (Landmark, bool) {
	if i < 0 || i >= len(l) {
		return Landmark{}, false
	}
	return l[i], true
}

// Has reports whether every listed index is present.
func (l Landmarks) Has(indices ...int) bool {
	for _, i := range indices {
		if i < 0 || i >= len(l) {
			return false
		}
	}
	return true
}

// Empty reports whether the set carries no landmarks at all.
func (l Landmarks) Empty() bool {
	return len(l) == 0
}

// Clone returns a copy that can be modified independently.
func (l Landmarks) Clone() Landmarks {
	if l == nil {
		return nil
	}
	out := make(Landmarks, len(l))
	copy(out, l)
	return out
}
