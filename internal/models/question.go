package models

// Question is an entry of the master question list. Index is the stable
// identity of the question and never changes once published.
type Question struct {
	Index        int    `yaml:"index" json:"index"`
	Key          string `yaml:"key" json:"key"`
	Section      string `yaml:"section" json:"section"`
	Prompt       string `yaml:"prompt" json:"prompt"`
	SummaryLabel string `yaml:"summary_label" json:"summary_label"`
}
