package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/export"
	"github.com/matzehuels/badgekit/pkg/observability"
	"github.com/matzehuels/badgekit/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	badgeOpts
	output  string // output directory
	formats string // comma-separated: png, pdf
	name    string // base file name override
}

// renderCommand creates the render command for exporting badge files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render CONFIG",
		Short: "Render badges to PNG and PDF files",
		Long: `Render the badge configuration CONFIG (JSON) to print-ready files.

Without --visitors a single sample badge is rendered. With a visitor file
every visitor gets one badge per format, named after their album code.`,
		Example: `  badgekit render badge.json
  badgekit render badge.json -f png,pdf -o out --visitors guests.json
  badgekit render badge.json --template cr80-landscape --print a6.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config, else .)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.name, "name", "", "base file name instead of badge-{code}")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts *renderOpts) error {
	popts, err := c.options(path, &opts.badgeOpts)
	if err != nil {
		return err
	}
	popts.Name = opts.name
	popts.Formats = c.formats(opts.formats)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	dir := opts.output
	if dir == "" {
		dir = c.Config.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := c.execute(ctx, runner, popts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(path))
	for _, a := range result.Artifacts {
		out, err := export.Save(dir, a)
		if err != nil {
			return err
		}
		printFile(out)
	}
	fmt.Println(statsLine(result.Stats.Badges, len(result.Artifacts), result.Stats.Bytes, result.CacheInfo.Hits))
	return nil
}

// formats returns the --format flag, or the configured default formats.
func (c *CLI) formats(flag string) []string {
	if flag == "" && len(c.Config.Output.Formats) > 0 {
		return c.Config.Output.Formats
	}
	return parseFormats(flag)
}

// execute runs the pipeline behind a spinner that counts finished
// artifacts.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	total := max(len(opts.Visitors), 1) * len(opts.Formats)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering 0/%d", total))

	counter := &progressHooks{total: total, spinner: spinner}
	observability.SetExportHooks(counter)
	observability.SetCacheHooks(counter)
	defer observability.Reset()

	prog := newProgress(c.Logger)
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Rendered %d badges", result.Stats.Badges))
	return result, nil
}

// progressHooks advances the spinner as artifacts are exported or served
// from the cache.
type progressHooks struct {
	observability.NoopExportHooks
	observability.NoopCacheHooks
	total   int
	spinner *Spinner
	done    atomic.Int64
}

func (p *progressHooks) OnExportComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err == nil {
		p.advance()
	}
}

func (p *progressHooks) OnCacheHit(_ context.Context, keyType string) {
	if keyType == "artifact" {
		p.advance()
	}
}

func (p *progressHooks) advance() {
	p.spinner.SetMessage("Rendering %d/%d", p.done.Add(1), p.total)
}
