// Package overlay draws the detected skeleton onto preview frames, coloring
// joints by the feedback for their body part.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/formcheck/internal/pose"
	"github.com/ayusman/formcheck/internal/posture"
)

var (
	ColorError   = color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}
	ColorWarning = color.RGBA{R: 0xFF, G: 0xB3, B: 0x47, A: 0xFF}
	ColorGood    = color.RGBA{R: 0x4E, G: 0xCD, B: 0xC4, A: 0xFF}
	ColorDefault = color.RGBA{R: 0xC8, G: 0xFA, B: 0x14, A: 0xFF}
)

const (
	jointRadius   = 6
	lineThickness = 3
)

// Connections are the skeleton edges of the 33-point pose model.
var Connections = [][2]int{
	{pose.Nose, pose.RightEyeInner}, {pose.RightEyeInner, pose.RightEye}, {pose.RightEye, pose.RightEyeOuter}, {pose.RightEyeOuter, pose.RightEar},
	{pose.Nose, pose.LeftEyeInner}, {pose.LeftEyeInner, pose.LeftEye}, {pose.LeftEye, pose.LeftEyeOuter}, {pose.LeftEyeOuter, pose.LeftEar},
	{pose.MouthLeft, pose.MouthRight},
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftShoulder, pose.LeftElbow}, {pose.LeftElbow, pose.LeftWrist},
	{pose.LeftWrist, pose.LeftPinky}, {pose.LeftWrist, pose.LeftIndex}, {pose.LeftWrist, pose.LeftThumb}, {pose.LeftPinky, pose.LeftIndex},
	{pose.RightShoulder, pose.RightElbow}, {pose.RightElbow, pose.RightWrist},
	{pose.RightWrist, pose.RightPinky}, {pose.RightWrist, pose.RightIndex}, {pose.RightWrist, pose.RightThumb}, {pose.RightPinky, pose.RightIndex},
	{pose.LeftShoulder, pose.LeftHip}, {pose.RightShoulder, pose.RightHip}, {pose.LeftHip, pose.RightHip},
	{pose.LeftHip, pose.LeftKnee}, {pose.RightHip, pose.RightKnee},
	{pose.LeftKnee, pose.LeftAnkle}, {pose.RightKnee, pose.RightAnkle},
	{pose.LeftAnkle, pose.LeftHeel}, {pose.RightAnkle, pose.RightHeel},
	{pose.LeftHeel, pose.LeftFootIndex}, {pose.RightHeel, pose.RightFootIndex},
	{pose.LeftAnkle, pose.LeftFootIndex}, {pose.RightAnkle, pose.RightFootIndex},
}

var bodyPartJoints = map[string][]int{
	posture.PartKnees:     {pose.LeftKnee, pose.RightKnee},
	posture.PartBack:      {pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip},
	posture.PartArms:      {pose.LeftElbow, pose.RightElbow, pose.LeftWrist, pose.RightWrist},
	posture.PartCore:      {pose.LeftHip, pose.RightHip},
	posture.PartShoulders: {pose.LeftShoulder, pose.RightShoulder},
	posture.PartHips:      {pose.LeftHip, pose.RightHip},
	posture.PartFrontKnee: {pose.LeftKnee},
	posture.PartTorso:     {pose.LeftShoulder, pose.LeftHip},
}

// ColorFor picks the color of joint index: the severity of the first
// feedback item whose body part covers it, or ColorDefault.
func ColorFor(index int, fb []posture.Feedback) color.RGBA {
	for _, f := range fb {
		for _, j := range bodyPartJoints[f.BodyPart] {
			if j != index {
				continue
			}
			switch f.Severity {
			case posture.Error:
				return ColorError
			case posture.Warning:
				return ColorWarning
			default:
				return ColorGood
			}
		}
	}
	return ColorDefault
}

// Draw paints connections and joints of l onto img in place.
func Draw(img *gocv.Mat, l pose.Landmarks, fb []posture.Feedback) {
	if img == nil || img.Empty() || l.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()
	pt := func(lm pose.Landmark) image.Point {
		return image.Pt(int(lm.X*float64(w)), int(lm.Y*float64(h)))
	}

	for _, c := range Connections {
		if !l.Has(c[0], c[1]) {
			continue
		}
		gocv.Line(img, pt(l[c[0]]), pt(l[c[1]]), ColorDefault, lineThickness)
	}
	for i, lm := range l {
		gocv.Circle(img, pt(lm), jointRadius, ColorFor(i, fb), -1)
	}
}

// Annotate draws onto a copy of frame and returns it as JPEG.
func Annotate(frame *gocv.Mat, l pose.Landmarks, fb []posture.Feedback) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	img := frame.Clone()
	defer img.Close()

	Draw(&img, l, fb)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
