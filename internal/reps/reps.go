// Package reps turns a stream of poses into movement phases and counts
// down-to-up transitions as repetitions.
package reps

import (
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/pose"
)

// Phase is the coarse position within one repetition.
type Phase string

const (
	Up      Phase = "up"
	Down    Phase = "down"
	Neutral Phase = "neutral"
)

// State is the counter value carried from frame to frame.
type State struct {
	Count   int   `json:"count"`
	Current Phase `json:"currentState"`
	Last    Phase `json:"lastState"`
}

// Initial is the state after a reset.
func Initial() State {
	return State{Count: 0, Current: Neutral, Last: Neutral}
}

// Advance folds one detected phase into s. A repetition is counted on a
// down-to-up transition, possibly with neutral frames in between. Neutral
// frames never overwrite Last.
func Advance(p Phase, s State) State {
	if s.Last == Down && p == Up {
		return State{Count: s.Count + 1, Current: p, Last: p}
	}
	if p != Neutral {
		return State{Count: s.Count, Current: p, Last: p}
	}
	return State{Count: s.Count, Current: p, Last: s.Last}
}

// Thresholds are the joint angles, in degrees, that separate the phases.
type Thresholds struct {
	UpAngle   float64 `json:"upAngle"`
	DownAngle float64 `json:"downAngle"`
}

var thresholds = map[exercise.Exercise]Thresholds{
	exercise.Squat:         {UpAngle: 160, DownAngle: 100},
	exercise.Pushup:        {UpAngle: 150, DownAngle: 90},
	exercise.Lunge:         {UpAngle: 150, DownAngle: 100},
	exercise.Deadlift:      {UpAngle: 160, DownAngle: 100},
	exercise.ShoulderPress: {UpAngle: 160, DownAngle: 90},
	exercise.BicepCurl:     {UpAngle: 150, DownAngle: 50},
}

// ThresholdsFor returns the phase thresholds for ex, or false when reps are
// not tracked for it.
func ThresholdsFor(ex exercise.Exercise) (Thresholds, bool) {
	t, ok := thresholds[ex]
	return t, ok
}

func (t Thresholds) classify(angle float64) Phase {
	switch {
	case angle > t.UpAngle:
		return Up
	case angle < t.DownAngle:
		return Down
	default:
		return Neutral
	}
}

// DetectPhase reports the phase of ex shown by l. Exercises without
// thresholds, missing landmarks and empty sets all give Neutral.
func DetectPhase(ex exercise.Exercise, l pose.Landmarks) Phase {
	if l.Empty() {
		return Neutral
	}
	t, ok := thresholds[ex]
	if !ok {
		return Neutral
	}

	var (
		angle float64
		found bool
	)
	switch ex {
	case exercise.Squat:
		angle, found = l.MeanJointAngle(pose.LeftKneeJoint, pose.RightKneeJoint)
	case exercise.Pushup, exercise.ShoulderPress, exercise.BicepCurl:
		angle, found = l.MeanJointAngle(pose.LeftElbowJoint, pose.RightElbowJoint)
	case exercise.Lunge:
		angle, found = l.JointAngle(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
	case exercise.Deadlift:
		angle, found = l.MeanJointAngle(pose.LeftHipJoint, pose.RightHipJoint)
	}
	if !found {
		return Neutral
	}

	phase := t.classify(angle)

	switch ex {
	case exercise.ShoulderPress:
		// Straight arms hanging by the sides are not a lockout.
		if phase == Up && !wristOverhead(l) {
			return Neutral
		}
	case exercise.BicepCurl:
		// Extended arms are the bottom of a curl.
		switch phase {
		case Up:
			return Down
		case Down:
			return Up
		}
	}
	return phase
}

func wristOverhead(l pose.Landmarks) bool {
	if l.Has(pose.LeftWrist, pose.LeftShoulder) && l[pose.LeftWrist].Y < l[pose.LeftShoulder].Y {
		return true
	}
	return l.Has(pose.RightWrist, pose.RightShoulder) && l[pose.RightWrist].Y < l[pose.RightShoulder].Y
}

// Completion is the progress towards goal as a percentage capped at 100.
// A non-positive goal reports 0.
func Completion(count, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	pct := float64(count) / float64(goal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
