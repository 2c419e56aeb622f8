package posture

import (
	"math"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/pose"
)

// Body part labels used in feedback.
const (
	PartKnees     = "knees"
	PartBack      = "back"
	PartArms      = "arms"
	PartCore      = "core"
	PartShoulders = "shoulders"
	PartHips      = "hips"
	PartFrontKnee = "front knee"
	PartTorso     = "torso"
)

// check produces one item, or false when its landmarks are missing.
type check func(l pose.Landmarks) (Feedback, bool)

var strategies = map[exercise.Exercise][]check{
	exercise.Squat:         {squatKnees, squatBack},
	exercise.Pushup:        {pushupArms, pushupCore},
	exercise.Plank:         {plankCore, plankShoulders},
	exercise.Lunge:         {lungeFrontKnee, lungeTorso},
	exercise.Deadlift:      {deadliftBack, deadliftKnees},
	exercise.ShoulderPress: {pressArms, pressCore},
	exercise.BicepCurl:     {curlArms, curlCore},
	exercise.General:       {generalShoulders, generalHips},
}

// Evaluate runs the checks for ex against one landmark set. Unknown
// exercises are evaluated as General. An empty set yields no feedback.
func Evaluate(ex exercise.Exercise, l pose.Landmarks) []Feedback {
	if l.Empty() {
		return nil
	}
	checks, ok := strategies[ex]
	if !ok {
		checks = strategies[exercise.General]
	}

	out := make([]Feedback, 0, len(checks))
	for _, c := range checks {
		if f, ok := c(l); ok {
			out = append(out, f)
		}
	}
	return out
}

func squatKnees(l pose.Landmarks) (Feedback, bool) {
	knee, ok := l.MeanJointAngle(pose.LeftKneeJoint, pose.RightKneeJoint)
	if !ok {
		return Feedback{}, false
	}
	switch {
	case knee > 160:
		return warning(PartKnees, "Go deeper! Bend your knees more."), true
	case knee < 70:
		return fault(PartKnees, "Don't go too deep, protect your knees!"), true
	default:
		return good(PartKnees, "Great knee depth!"), true
	}
}

func squatBack(l pose.Landmarks) (Feedback, bool) {
	back, ok := l.JointAngle(pose.LeftHip, pose.LeftShoulder, pose.LeftEar)
	if !ok {
		return Feedback{}, false
	}
	if back < 160 {
		return fault(PartBack, "Keep your back straight! Don't lean forward too much."), true
	}
	return good(PartBack, "Back position looks good!"), true
}

func pushupArms(l pose.Landmarks) (Feedback, bool) {
	elbow, ok := l.JointAngle(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist)
	if !ok {
		return Feedback{}, false
	}
	switch {
	case elbow > 160:
		return warning(PartArms, "Lower yourself! Bend your elbows more."), true
	case elbow < 70:
		return good(PartArms, "Great depth on the push-up!"), true
	default:
		return good(PartArms, "Good range of motion!"), true
	}
}

func pushupCore(l pose.Landmarks) (Feedback, bool) {
	body, ok := l.JointAngle(pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle)
	if !ok {
		return Feedback{}, false
	}
	if body < 160 {
		return fault(PartCore, "Keep your body straight! Don't let your hips sag."), true
	}
	return good(PartCore, "Great body alignment!"), true
}

func plankCore(l pose.Landmarks) (Feedback, bool) {
	body, ok := l.JointAngle(pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle)
	if !ok {
		return Feedback{}, false
	}
	switch {
	case body < 165:
		return fault(PartCore, "Your hips are sagging! Engage your core."), true
	case body > 185:
		// AngleAt never exceeds 180; kept so the band table stays complete.
		return warning(PartCore, "Your hips are too high! Lower them down."), true
	default:
		return good(PartCore, "Perfect plank position!"), true
	}
}

func plankShoulders(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftShoulder, pose.LeftHip) {
		return Feedback{}, false
	}
	if math.Abs(l[pose.LeftShoulder].Y-l[pose.LeftHip].Y) > 0.15 {
		return warning(PartShoulders, "Align your shoulders over your elbows."), true
	}
	return good(PartShoulders, "Shoulder position is good!"), true
}

func lungeFrontKnee(l pose.Landmarks) (Feedback, bool) {
	knee, ok := l.JointAngle(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
	if !ok {
		return Feedback{}, false
	}
	switch {
	case knee < 80:
		return fault(PartFrontKnee, "Front knee too bent! Don't let it go past your toes."), true
	case knee > 120:
		return warning(PartFrontKnee, "Go deeper into the lunge!"), true
	default:
		return good(PartFrontKnee, "Great lunge depth!"), true
	}
}

// lungeTorso measures how far the hip-to-shoulder line leans away from
// vertical. The reference point sits straight above the shoulder at the top
// edge of the frame, so an upright torso gives a 180 degree vertex angle.
func lungeTorso(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftHip, pose.LeftShoulder) {
		return Feedback{}, false
	}
	shoulder := l[pose.LeftShoulder]
	above := pose.Landmark{X: shoulder.X, Y: 0}
	lean := 180 - pose.AngleAt(l[pose.LeftHip], shoulder, above)
	if lean > 20 {
		return warning(PartTorso, "Keep your torso upright!"), true
	}
	return good(PartTorso, "Good torso position!"), true
}

func deadliftBack(l pose.Landmarks) (Feedback, bool) {
	hip, ok := l.JointAngle(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
	if !ok {
		return Feedback{}, false
	}
	if hip < 90 {
		return fault(PartBack, "Don't round your back! Keep it straight."), true
	}
	return good(PartBack, "Good back position!"), true
}

func deadliftKnees(l pose.Landmarks) (Feedback, bool) {
	knee, ok := l.JointAngle(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
	if !ok {
		return Feedback{}, false
	}
	if knee < 100 {
		return warning(PartKnees, "Don't squat the deadlift! Keep knees slightly bent."), true
	}
	return good(PartKnees, "Good knee position!"), true
}

func pressArms(l pose.Landmarks) (Feedback, bool) {
	elbow, ok := l.JointAngle(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist)
	if !ok {
		return Feedback{}, false
	}
	switch {
	case elbow < 80:
		return warning(PartArms, "Press higher! Extend your arms more."), true
	case elbow > 170:
		return good(PartArms, "Great lockout!"), true
	default:
		return good(PartArms, "Good range of motion!"), true
	}
}

func pressCore(l pose.Landmarks) (Feedback, bool) {
	back, ok := l.JointAngle(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
	if !ok {
		return Feedback{}, false
	}
	if back < 160 {
		return fault(PartCore, "Don't lean back! Keep your core tight."), true
	}
	return good(PartCore, "Core engagement looks good!"), true
}

func curlArms(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftElbow, pose.LeftShoulder) {
		return Feedback{}, false
	}
	if math.Abs(l[pose.LeftElbow].X-l[pose.LeftShoulder].X) > 0.15 {
		return warning(PartArms, "Keep your elbows tucked close to your body!"), true
	}
	return good(PartArms, "Good elbow position!"), true
}

func curlCore(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftShoulder, pose.LeftHip) {
		return Feedback{}, false
	}
	if math.Abs(l[pose.LeftShoulder].X-l[pose.LeftHip].X) > 0.08 {
		return fault(PartCore, "Don't swing! Keep your body still."), true
	}
	return good(PartCore, "Good form - no swinging!"), true
}

func generalShoulders(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftShoulder, pose.RightShoulder) {
		return Feedback{}, false
	}
	if math.Abs(l[pose.LeftShoulder].Y-l[pose.RightShoulder].Y) > 0.05 {
		return warning(PartShoulders, "Level your shoulders - one is higher than the other."), true
	}
	return good(PartShoulders, "Shoulders are level!"), true
}

func generalHips(l pose.Landmarks) (Feedback, bool) {
	if !l.Has(pose.LeftHip, pose.RightHip) {
		return Feedback{}, false
	}
	if math.Abs(l[pose.LeftHip].Y-l[pose.RightHip].Y) > 0.05 {
		return warning(PartHips, "Level your hips - keep them even."), true
	}
	return good(PartHips, "Hip alignment is good!"), true
}
