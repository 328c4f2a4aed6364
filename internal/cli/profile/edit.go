package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/carelog/internal/cli"
)

type AnswerEditCmd struct {
	Section string `short:"s" help:"Only edit one section."`
	Sync    bool   `help:"Sync right after saving the drafts."`
}

func (c *AnswerEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	book, err := ctx.Answers(bg)
	if err != nil {
		return err
	}
	view, err := book.View(bg)
	if err != nil {
		return err
	}

	qs := ctx.Catalog.All()
	if c.Section != "" {
		if qs = ctx.Catalog.InSection(c.Section); len(qs) == 0 {
			return fmt.Errorf("unknown section %q", c.Section)
		}
	}
	edits := newEdits(qs, view)

	if err := newAnswerForm(edits).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			ctx.Println("Edit cancelled.")
			return nil
		}
		return err
	}

	updates := changed(edits)
	if len(updates) == 0 {
		ctx.Println("No changes.")
		return nil
	}
	for _, i := range sortedIndices(updates) {
		slot := updates[i]
		if err := book.SetDraft(bg, i, slot.Answer, slot.Summary); err != nil {
			return err
		}
	}
	ctx.Printf("Saved %d draft answer(s).\n", len(updates))

	if c.Sync {
		return (&AnswerSyncCmd{}).Run(ctx)
	}
	return nil
}

// newAnswerForm builds one form page per section.
func newAnswerForm(edits []*edit) *huh.Form {
	var groups []*huh.Group
	var fields []huh.Field
	section := ""
	flush := func() {
		if len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...).Title(section))
		}
		fields = nil
	}

	for _, e := range edits {
		if e.question.Section != section {
			flush()
			section = e.question.Section
		}
		fields = append(fields,
			huh.NewText().
				Title(e.question.Prompt).
				Description(e.question.Key).
				Lines(2).
				Value(&e.answer),
			huh.NewInput().
				Title(e.question.SummaryLabel).
				Placeholder("short summary (optional)").
				Value(&e.summary),
		)
	}
	flush()

	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}
