package timerule

import (
	"time"

	"github.com/julianstephens/carelog/internal/models"
)

// NextOccurrence returns the first instant strictly after from whose
// wall-clock time in from's location equals t. The result is either today
// or, when today's instant has already passed, the same time tomorrow.
// On a spring-forward day a time inside the gap fires just after the jump
// (2:30 becomes 3:30).
func NextOccurrence(t models.TimeOfDay, from time.Time) time.Time {
	today := models.DateOf(from)
	target := today.At(t, from.Location())
	if !target.After(from) {
		// Rolls by calendar day, so DST transitions keep the wall-clock time.
		target = today.AddDays(1).At(t, from.Location())
	}
	return target
}
