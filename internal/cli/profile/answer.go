// Package profile implements the questionnaire answer commands.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/questions"
)

type AnswerCmd struct {
	List AnswerListCmd `cmd:"" help:"List questions with their current answers." default:"1"`
	Set  AnswerSetCmd  `cmd:"" help:"Record a draft answer."`
	Edit AnswerEditCmd `cmd:"" help:"Edit answers in an interactive form."`
	Sync AnswerSyncCmd `cmd:"" help:"Merge draft answers into the remote profile."`
}

type AnswerListCmd struct {
	Section string `short:"s" help:"Only show one section."`
	Drafts  bool   `help:"Only show unsynced draft answers."`
}

func (c *AnswerListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	book, err := ctx.Answers(bg)
	if err != nil {
		return err
	}

	drafts, err := book.Drafts(bg)
	if err != nil {
		return err
	}
	view, err := book.View(bg)
	if err != nil {
		return err
	}

	qs := ctx.Catalog.All()
	if c.Section != "" {
		qs = ctx.Catalog.InSection(c.Section)
		if len(qs) == 0 {
			return fmt.Errorf("unknown section %q (sections: %s)", c.Section, strings.Join(ctx.Catalog.Sections(), ", "))
		}
	}

	section := ""
	shown := 0
	for _, q := range qs {
		_, isDraft := drafts[q.Index]
		if c.Drafts && !isDraft {
			continue
		}
		if q.Section != section {
			section = q.Section
			ctx.Printf("\n%s\n", section)
		}
		marker := " "
		if isDraft {
			marker = "*"
		}
		ctx.Printf("%s [%d] %s\n", marker, q.Index, q.Prompt)
		slot := view[q.Index]
		if slot.IsEmpty() {
			ctx.Println("      (no answer)")
		} else {
			ctx.Printf("      %s\n", slot.Answer)
			if slot.Summary != "" {
				ctx.Printf("      %s: %s\n", q.SummaryLabel, slot.Summary)
			}
		}
		shown++
	}

	if shown == 0 {
		ctx.Println("No draft answers.")
		return nil
	}
	if len(drafts) > 0 {
		ctx.Printf("\n* %d unsynced draft(s). Run 'answer sync' to save them.\n", len(drafts))
	}
	return nil
}

type AnswerSetCmd struct {
	Question string `arg:"" help:"Question key or index."`
	Answer   string `arg:"" help:"Answer text."`
	Summary  string `help:"Short summary shown in exports."`
}

func (c *AnswerSetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	book, err := ctx.Answers(bg)
	if err != nil {
		return err
	}

	q, err := lookup(ctx.Catalog, c.Question)
	if err != nil {
		return err
	}
	if err := book.SetDraft(bg, q.Index, c.Answer, c.Summary); err != nil {
		return err
	}
	ctx.Printf("Saved draft answer for [%d] %s\n", q.Index, q.Key)
	return nil
}

type AnswerSyncCmd struct{}

func (c *AnswerSyncCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	book, err := ctx.Answers(bg)
	if err != nil {
		return err
	}

	result, err := book.Sync(bg)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if len(result.Changed) == 0 {
		ctx.Println("Answers are up to date.")
		return nil
	}
	ctx.Printf("Synced %d changed answer(s):\n", len(result.Changed))
	for _, i := range result.Changed {
		if q, ok := ctx.Catalog.At(i); ok {
			ctx.Printf("  [%d] %s\n", i, q.Key)
		}
	}
	return nil
}

// lookup resolves a question by key, or by index when ref is a number.
func lookup(catalog *questions.Catalog, ref string) (models.Question, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		if q, ok := catalog.At(i); ok {
			return q, nil
		}
		return models.Question{}, fmt.Errorf("question index %d out of range (0-%d)", i, catalog.Len()-1)
	}
	if q, ok := catalog.ByKey(ref); ok {
		return q, nil
	}
	return models.Question{}, fmt.Errorf("unknown question %q", ref)
}

// edit is one question's form state.
type edit struct {
	question models.Question
	original models.AnswerSlot
	answer   string
	summary  string
}

func newEdits(qs []models.Question, view []models.AnswerSlot) []*edit {
	edits := make([]*edit, len(qs))
	for i, q := range qs {
		var slot models.AnswerSlot
		if q.Index < len(view) {
			slot = view[q.Index]
		}
		edits[i] = &edit{question: q, original: slot, answer: slot.Answer, summary: slot.Summary}
	}
	return edits
}

// changed returns the edited slots keyed by question index.
func changed(edits []*edit) models.AnswerSet {
	out := models.AnswerSet{}
	for _, e := range edits {
		slot := models.AnswerSlot{Answer: strings.TrimSpace(e.answer), Summary: strings.TrimSpace(e.summary)}
		if slot != e.original {
			out[e.question.Index] = slot
		}
	}
	return out
}

func sortedIndices(set models.AnswerSet) []int {
	idx := make([]int, 0, len(set))
	for i := range set {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
