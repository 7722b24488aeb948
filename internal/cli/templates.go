package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/catalog"
	"github.com/matzehuels/badgekit/pkg/io"
)

// templatesCommand creates the layout template command group.
func (c *CLI) templatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "List, inspect and apply layout templates",
	}

	cmd.AddCommand(c.templatesListCommand())
	cmd.AddCommand(c.templatesShowCommand())
	cmd.AddCommand(c.templatesApplyCommand())

	return cmd
}

func (c *CLI) templatesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available layout templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			fmt.Println(templateTable(cat.List()))
			return nil
		},
	}
}

func (c *CLI) templatesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show ID",
		Short:             "Show the details of a layout template",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			t, err := cat.Lookup(args[0])
			if err != nil {
				return err
			}
			printTemplate(t)
			return nil
		},
	}
}

func (c *CLI) templatesApplyCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "apply ID CONFIG",
		Short: "Apply a layout template to a badge configuration",
		Long: `Apply the template ID to the configuration file CONFIG.

The template replaces layout, print settings and element positions and
enables custom positioning. Every other setting of CONFIG is kept. The
result is written to --output, or back to CONFIG.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			t, err := cat.Lookup(args[0])
			if err != nil {
				return err
			}
			cfg, err := io.ImportConfiguration(args[1])
			if err != nil {
				return err
			}

			out := output
			if out == "" {
				out = args[1]
			}
			if err := io.ExportConfiguration(catalog.Apply(t, cfg), out); err != nil {
				return err
			}
			printSuccess("Applied %s", StyleHighlight.Render(t.Name))
			printFile(out)
			printNextStep("Render it", "badgekit render "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite CONFIG)")
	return cmd
}

// completeTemplateIDs completes the first argument with catalog ids.
func (c *CLI) completeTemplateIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	cat, err := c.catalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return cat.IDs(), cobra.ShellCompDirectiveNoFileComp
}

// templateTable renders templates as a bordered table.
func templateTable(ts []catalog.Template) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	idStyle := lipgloss.NewStyle().Foreground(colorCyan)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite)

	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, []string{t.ID, t.Name, string(t.Layout), t.Print.Display()})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Layout", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return idStyle
			}
			return cellStyle
		}).
		Render()
}

// printTemplate prints one template as key/value lines.
func printTemplate(t catalog.Template) {
	fmt.Println(StyleTitle.Render(t.Name))
	if t.Description != "" {
		fmt.Println(StyleDim.Render(t.Description))
	}
	printNewline()

	ps := t.Print
	printKeyValue("id", t.ID)
	printKeyValue("layout", string(t.Layout))
	printKeyValue("size", ps.Display())
	if ps.DPI > 0 {
		printKeyValue("dpi", fmt.Sprintf("%g", ps.DPI))
	}
	if ps.BleedInches > 0 {
		printKeyValue("bleed", fmt.Sprintf("%g in", ps.BleedInches))
	}
	if t.BackgroundColor != "" {
		printKeyValue("background", t.BackgroundColor)
	}
	if t.BackgroundURL != "" {
		printKeyValue("image", t.BackgroundURL)
	}
	if t.PhotoSize != "" {
		printKeyValue("photo size", string(t.PhotoSize))
	}
	if t.QRSize != "" {
		printKeyValue("qr size", string(t.QRSize))
	}

	if len(t.Positions) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleDim.Render("positions"))
	keys := make([]badge.ElementKey, 0, len(t.Positions))
	for k := range t.Positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		printKeyValue(string(k), formatPosition(t.Positions[k]))
	}
}

func formatPosition(p badge.ElementPosition) string {
	s := fmt.Sprintf("%g%%, %g%%", p.X, p.Y)
	if p.Width > 0 {
		s += fmt.Sprintf("  width %g%%", p.Width)
	}
	if p.FontSize > 0 {
		s += fmt.Sprintf("  font %g%%", p.FontSize)
	}
	return s
}
