package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete the existing local database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Force {
		if err := ctx.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if _, err := os.Stat(ctx.DBPath); err == nil {
			if err := os.Remove(ctx.DBPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", ctx.DBPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Init(bg); err != nil {
		return err
	}
	ctx.Printf("Initialized carelog storage at: %s\n", ctx.DBPath)
	ctx.Printf("Profile ID: %s\n", ctx.Settings.ProfileID)

	if ctx.Remote != "" {
		if _, err := ctx.Answers(bg); err != nil {
			return err
		}
		ctx.Printf("Remote answers store ready: %s\n", storage.Describe(ctx.Remote))
	}
	return nil
}
