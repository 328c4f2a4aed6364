// Package answers reconciles locally edited questionnaire answers with the
// last persisted copy.
package answers

import "github.com/julianstephens/carelog/internal/models"

// Merge returns exactly masterLength slots. Slot i is the local answer when
// it is non-blank, otherwise the remote answer, otherwise empty. Local edits
// always win regardless of when the remote copy was written.
func Merge(masterLength int, local, remote models.AnswerSet) []models.AnswerSlot {
	if masterLength <= 0 {
		return []models.AnswerSlot{}
	}
	out := make([]models.AnswerSlot, masterLength)
	for i := range out {
		if l, ok := local[i]; ok && !l.IsEmpty() {
			out[i] = l
			continue
		}
		out[i] = remote[i]
	}
	return out
}

// Changed returns the indices whose merged slot differs from remote, in
// ascending order. These are the slots a sync will overwrite.
func Changed(remote models.AnswerSet, merged []models.AnswerSlot) []int {
	var idx []int
	for i, slot := range merged {
		if remote[i] != slot {
			idx = append(idx, i)
		}
	}
	return idx
}
