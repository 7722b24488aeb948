package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/io"
	"github.com/matzehuels/badgekit/pkg/pipeline"
)

// badgeOpts holds the flags shared by render and print.
type badgeOpts struct {
	printFile string // print settings JSON overriding the configuration
	template  string // catalog template applied before rendering
	albumCode string // code for visitors without their own
	visitors  string // visitor JSON: one object or an array
	jobs      int
	noCache   bool
	refresh   bool
}

func (o *badgeOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.printFile, "print", "", "print settings file (JSON)")
	cmd.Flags().StringVarP(&o.template, "template", "t", "", "apply a layout template by id")
	cmd.Flags().StringVar(&o.albumCode, "album-code", "", "album code encoded in the QR code")
	cmd.Flags().StringVar(&o.visitors, "visitors", "", "visitor file (JSON object or array)")
	cmd.Flags().StringVar(&o.visitors, "visitor", "", "alias for --visitors")
	cmd.Flags().IntVarP(&o.jobs, "jobs", "j", pipeline.DefaultJobs, "badges rendered concurrently")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the asset and artifact cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-render even when cached")
	_ = cmd.Flags().MarkHidden("visitor")
}

// options loads the configuration at path and the files named by the
// flags into pipeline options.
func (c *CLI) options(path string, o *badgeOpts) (pipeline.Options, error) {
	cfg, err := io.ImportConfiguration(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Config:     cfg,
		TemplateID: o.template,
		AlbumCode:  o.albumCode,
		Jobs:       o.jobs,
		Refresh:    o.refresh,
		Logger:     c.Logger,
	}

	switch {
	case o.printFile != "":
		ps, err := io.ImportPrintSettings(o.printFile)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Print = &ps
	case cfg.Print == nil && o.template == "" && c.Config.Print != nil:
		ps := *c.Config.Print
		opts.Print = &ps
	}

	if o.visitors != "" {
		vs, err := io.ImportVisitors(o.visitors)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Visitors = vs
	}
	return opts, nil
}

// firstVisitor returns the first visitor of opts, or nil for the sample
// badge.
func firstVisitor(opts pipeline.Options) *badge.Visitor {
	if len(opts.Visitors) == 0 {
		return nil
	}
	return &opts.Visitors[0]
}
