package app

import (
	"time"

	"github.com/ayusman/formcheck/internal/posture"
)

// DefaultSpeechCooldown is the minimum gap between two spoken corrections.
const DefaultSpeechCooldown = 3 * time.Second

// throttler picks at most one correction to speak per cooldown window. It is
// owned by a single App and guarded by the App's mutex.
type throttler struct {
	cooldown    time.Duration
	lastMessage string
	lastSpoke   time.Time
}

func newThrottler(cooldown time.Duration) *throttler {
	if cooldown <= 0 {
		cooldown = DefaultSpeechCooldown
	}
	return &throttler{cooldown: cooldown}
}

// next returns the message to speak now, if any. Errors win over warnings,
// good items are never spoken and the same message is never repeated back
// to back.
func (t *throttler) next(fb []posture.Feedback, now time.Time) (string, bool) {
	if !t.lastSpoke.IsZero() && now.Sub(t.lastSpoke) < t.cooldown {
		return "", false
	}

	item, ok := posture.First(fb, posture.Error)
	if !ok {
		item, ok = posture.First(fb, posture.Warning)
	}
	if !ok || item.Message == t.lastMessage {
		return "", false
	}

	t.lastMessage = item.Message
	t.lastSpoke = now
	return item.Message, true
}

// hold starts a new cooldown window without changing the last message, so a
// rep or goal announcement is not cut off by the next correction.
func (t *throttler) hold(now time.Time) {
	t.lastSpoke = now
}

func (t *throttler) reset() {
	t.lastMessage = ""
	t.lastSpoke = time.Time{}
}
