package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/render"
)

// printCommand creates the print command, which opens a print-ready PDF
// in the system viewer.
func (c *CLI) printCommand() *cobra.Command {
	var opts badgeOpts

	cmd := &cobra.Command{
		Use:   "print CONFIG",
		Short: "Open a print-ready PDF of a badge",
		Long: `Render CONFIG to a single-page PDF sized to the badge plus bleed and
open it in the system PDF viewer for printing.

With a visitor file only the first visitor is printed; use
"badgekit render -f pdf" to produce documents for a whole batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrint(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func (c *CLI) runPrint(ctx context.Context, path string, opts *badgeOpts) error {
	popts, err := c.options(path, opts)
	if err != nil {
		return err
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(popts.Visitors) > 1 {
		printWarning("Printing the first of %d visitors", len(popts.Visitors))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	cfg, err := runner.Prepare(popts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Preparing document")
	spinner.Start()
	spool, err := runner.Exporter.Print(ctx, render.Input{
		Config:    cfg,
		AlbumCode: popts.AlbumCode,
		Visitor:   firstVisitor(popts),
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	ps := cfg.PrintSettings()
	printSuccess("Opened print document")
	printDetail("%s · %g dpi", ps.Display(), ps.DPI)
	printFile(spool)
	return nil
}
