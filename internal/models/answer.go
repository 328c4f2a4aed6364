package models

import "strings"

// AnswerSlot is one question's stored answer plus its short summary.
type AnswerSlot struct {
	Answer  string `json:"answer"`
	Summary string `json:"summary"`
}

// IsEmpty reports whether the answer is blank after trimming.
func (s AnswerSlot) IsEmpty() bool {
	return strings.TrimSpace(s.Answer) == ""
}

// AnswerSet is a sparse collection of answers keyed by master question index.
type AnswerSet map[int]AnswerSlot

// AnswerSetFromSlots indexes a dense slot list.
func AnswerSetFromSlots(slots []AnswerSlot) AnswerSet {
	set := make(AnswerSet, len(slots))
	for i, s := range slots {
		set[i] = s
	}
	return set
}
