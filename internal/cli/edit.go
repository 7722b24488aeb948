package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/editor"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/io"
	"github.com/matzehuels/badgekit/pkg/layout"
	"github.com/matzehuels/badgekit/pkg/render"
)

// Terminal cells map to editor units at a fixed 1:2 aspect so the badge
// keeps its proportions on screen.
const (
	cellW = 4.0
	cellH = 8.0

	headerRows = 2 // title and key help above the badge
	footerRows = 3 // status lines below the badge

	nudgeStep = 1.0 // percent per arrow key press
)

var elementLabels = map[badge.ElementKey]string{
	badge.ElementPhoto:     "photo",
	badge.ElementName:      "Visitor Name",
	badge.ElementEventName: "Event Name",
	badge.ElementDateTime:  "Date & Time",
	badge.ElementAlbumCode: "ALBUM-CODE",
	badge.ElementQRCode:    "QR",
}

var (
	editBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	editElementStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	editSelectedStyle = lipgloss.NewStyle().Foreground(colorCyan)
	editActiveStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Reverse(true)
)

// editOpts holds the command-line flags for the edit command.
type editOpts struct {
	snap      bool
	preview   string
	albumCode string
	noCache   bool
}

// editCommand creates the interactive positioning editor.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit CONFIG",
		Short: "Position badge elements interactively",
		Long: `Open CONFIG in a terminal editor with mouse support.

Drag an element to move it. Drag with the right button, or with shift or
alt held, to resize: text by font size, photo and QR code by width. Every
committed change re-renders a PNG preview with bleed guides next to
CONFIG.

Keys: tab selects, arrows nudge, r resets to the default layout, g toggles
grid snapping, s saves, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.snap, "snap", false, "snap positions to the grid")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "preview image path (default CONFIG.preview.png)")
	cmd.Flags().StringVar(&opts.albumCode, "album-code", "", "album code encoded in the preview QR code")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the asset cache")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, opts *editOpts) error {
	cfg, err := io.ImportConfiguration(path)
	if err != nil {
		return err
	}
	if err := errors.ValidateAlbumCode(opts.albumCode); err != nil {
		return err
	}
	previewPath := opts.preview
	if previewPath == "" {
		previewPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".preview.png"
	}

	ch, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer ch.Close()
	engine, err := c.newEngine(ch)
	if err != nil {
		return err
	}

	m := newEditModel(ctx, path, cfg, render.NewPreview(engine))
	m.previewPath = previewPath
	m.albumCode = opts.albumCode
	if opts.snap {
		m.ed.SetSnap(badge.DefaultSnapGap)
	}
	defer m.close()

	// Log lines would tear the alternate screen; replay them afterwards.
	var logs bytes.Buffer
	c.Logger.SetOutput(&logs)
	defer func() {
		c.Logger.SetOutput(os.Stderr)
		os.Stderr.Write(logs.Bytes())
	}()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("editor: %w", err)
	}

	switch {
	case m.dirty:
		printWarning("Discarded unsaved changes to %s", path)
	case m.saved:
		printSuccess("Saved %s", path)
		printFile(previewPath)
	}
	return nil
}

// =============================================================================
// editModel - bubbletea model around editor.Editor
// =============================================================================

// editModel owns the working configuration. Committed editor updates are
// applied to it and trigger a preview render.
type editModel struct {
	ctx         context.Context
	path        string
	cfg         badge.Configuration
	ed          *editor.Editor
	sub         *editor.Subscription
	preview     *render.Preview
	previewPath string
	albumCode   string

	width, height int
	selected      badge.ElementKey
	committed     bool
	dirty         bool
	saved         bool
	confirmQuit   bool
	status        string
	previews      int
	previewErr    error
}

// previewMsg reports a finished preview render.
type previewMsg struct{ err error }

func newEditModel(ctx context.Context, path string, cfg badge.Configuration, preview *render.Preview) *editModel {
	m := &editModel{
		ctx:     ctx,
		path:    path,
		cfg:     cfg,
		preview: preview,
	}
	w, h := layout.EditorBox(cfg.Layout)
	m.ed = editor.New(&m.cfg, editor.Rect{W: w, H: h})
	m.sub = m.ed.Subscribe(func(editor.Update) { m.committed = true })
	m.selected = m.visible()[0]
	return m
}

func (m *editModel) close() {
	m.sub.Close()
	m.ed.Close()
}

func (m *editModel) Init() tea.Cmd {
	return m.renderPreview()
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.fit()
		return m, nil
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.BlurMsg:
		m.ed.Leave()
	case previewMsg:
		switch {
		case stderrors.Is(msg.err, render.ErrSuperseded):
		case msg.err != nil:
			m.previewErr = msg.err
		default:
			m.previewErr = nil
			m.previews++
		}
		return m, nil
	}
	return m, m.afterCommit()
}

// afterCommit applies a committed update to the configuration, snapping
// it first when enabled, and schedules a preview.
func (m *editModel) afterCommit() tea.Cmd {
	if !m.committed {
		return nil
	}
	if m.ed.Snap() > 0 && m.ed.UseCustomPositions() {
		_, _ = m.ed.Sync(m.ed.Positions(), true)
	}
	m.committed = false
	m.ed.ApplyTo(&m.cfg)
	m.dirty = true
	return m.renderPreview()
}

// renderPreview renders the current configuration with bleed guides and
// writes it to the preview path. Superseded renders are dropped.
func (m *editModel) renderPreview() tea.Cmd {
	in := render.Input{Config: m.cfg.Clone(), AlbumCode: m.albumCode}
	preview, path, ctx := m.preview, m.previewPath, m.ctx
	return func() tea.Msg {
		img, err := preview.Render(ctx, in)
		if err != nil {
			return previewMsg{err: err}
		}
		if err := imaging.Save(img, path); err != nil {
			return previewMsg{err: fmt.Errorf("save preview: %w", err)}
		}
		return previewMsg{}
	}
}

func (m *editModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "q" && key != "esc" {
		m.confirmQuit = false
	}

	switch key {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		if m.dirty && !m.confirmQuit {
			m.confirmQuit = true
			m.status = "Unsaved changes: s saves, q again discards"
			return nil
		}
		return tea.Quit
	case "s":
		if err := io.ExportConfiguration(m.cfg, m.path); err != nil {
			m.status = errors.UserMessage(err)
			return nil
		}
		m.dirty, m.saved = false, true
		m.status = "Saved " + m.path
	case "r":
		m.ed.Reset()
		m.status = "Reset to default positions"
	case "g":
		if m.ed.Snap() > 0 {
			m.ed.SetSnap(0)
			m.status = "Grid snap off"
			return nil
		}
		m.ed.SetSnap(badge.DefaultSnapGap)
		m.status = fmt.Sprintf("Grid snap %g%%", m.ed.Snap())
		if m.ed.UseCustomPositions() {
			_, _ = m.ed.Sync(m.ed.Positions(), true)
		}
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "left":
		m.nudge(-nudgeStep, 0)
	case "right":
		m.nudge(nudgeStep, 0)
	case "up":
		m.nudge(0, -nudgeStep)
	case "down":
		m.nudge(0, nudgeStep)
	}
	return nil
}

func (m *editModel) handleMouse(msg tea.MouseMsg) {
	p := cellPoint(msg.X, msg.Y)
	state, _ := m.ed.State()

	switch msg.Action {
	case tea.MouseActionPress:
		if state != editor.Idle {
			return
		}
		k, ok := m.ed.HitTest(p, cellH)
		if !ok {
			return
		}
		m.selected = k
		var err error
		switch {
		case msg.Button == tea.MouseButtonRight,
			msg.Button == tea.MouseButtonLeft && (msg.Shift || msg.Alt):
			err = m.ed.BeginResize(k, p)
		case msg.Button == tea.MouseButtonLeft:
			err = m.ed.BeginDrag(k, p)
		}
		if err != nil {
			m.status = err.Error()
		}
	case tea.MouseActionMotion:
		if state == editor.Idle {
			return
		}
		if !m.ed.Box().Contains(p) {
			m.ed.Leave()
			return
		}
		m.ed.Move(p)
	case tea.MouseActionRelease:
		m.ed.Release()
	}
}

// nudge moves the selected element by dx, dy percent.
func (m *editModel) nudge(dx, dy float64) {
	positions := m.ed.Positions()
	pos := positions.Get(m.selected)
	pos.X += dx
	pos.Y += dy
	positions[m.selected] = pos.Clamp(m.selected)
	if _, err := m.ed.Sync(positions, true); err != nil {
		m.status = err.Error()
		return
	}
	m.committed = true
}

// cycle moves the selection through the visible elements.
func (m *editModel) cycle(dir int) {
	vis := m.visible()
	i := 0
	for j, k := range vis {
		if k == m.selected {
			i = j
		}
	}
	m.selected = vis[(i+dir+len(vis))%len(vis)]
}

func (m *editModel) visible() []badge.ElementKey {
	var out []badge.ElementKey
	for _, k := range badge.Elements {
		if m.ed.Visible(k) {
			out = append(out, k)
		}
	}
	return out
}

// fit scales the nominal editor box into the terminal below the header.
func (m *editModel) fit() {
	w, h := layout.EditorBox(m.cfg.Layout)
	availW := float64(m.width-2) * cellW
	availH := float64(m.height-headerRows-footerRows-2) * cellH
	s := layout.FitScale(w, h, availW, availH)
	cols := max(int(math.Round(w*s/cellW)), 1)
	rows := max(int(math.Round(h*s/cellH)), 1)
	m.ed.SetBox(editor.Rect{
		X: cellW,
		Y: float64(headerRows+1) * cellH,
		W: float64(cols) * cellW,
		H: float64(rows) * cellH,
	})
}

// cellPoint returns the editor coordinates of a terminal cell's center.
func cellPoint(col, row int) editor.Point {
	return editor.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(row) + 0.5) * cellH}
}

func (m *editModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	box := m.ed.Box()
	cv := newCanvas(int(math.Round(box.W/cellW)), int(math.Round(box.H/cellH)))
	for _, k := range m.visible() {
		m.draw(cv, k)
	}
	_, active := m.ed.State()

	var b strings.Builder
	b.WriteString(StyleTitle.Render("badgekit edit") + "  " + StyleDim.Render(filepath.Base(m.path)) + "\n")
	b.WriteString(StyleDim.MaxWidth(m.width).Render("drag move · right/shift-drag resize · tab select · arrows nudge · r reset · g snap · s save · q quit") + "\n")
	b.WriteString(editBorderStyle.Render(cv.render(m.selected, active)) + "\n")
	b.WriteString(m.statusView())
	return b.String()
}

func (m *editModel) statusView() string {
	pos := m.ed.Positions().Get(m.selected)
	line := fmt.Sprintf("%s  x %.0f%%  y %.0f%%", m.selected, pos.X, pos.Y)
	if m.selected.IsBox() {
		line += fmt.Sprintf("  width %.0f%%", m.ed.WidthPercent(m.selected))
	} else if pos.FontSize > 0 {
		line += fmt.Sprintf("  font %.1f%%", pos.FontSize)
	}
	if state, _ := m.ed.State(); state != editor.Idle {
		line += "  " + StyleHighlight.Render(state.String())
	}

	flags := []string{"default layout"}
	if m.ed.UseCustomPositions() {
		flags[0] = "custom layout"
	}
	if step := m.ed.Snap(); step > 0 {
		flags = append(flags, fmt.Sprintf("snap %g%%", step))
	}
	if m.dirty {
		flags = append(flags, StyleWarning.Render("unsaved"))
	}

	preview := fmt.Sprintf("preview %s (%d renders)", m.previewPath, m.previews)
	if m.previewErr != nil {
		preview = StyleError.Render("preview failed: " + m.previewErr.Error())
	}

	return StyleValue.Render(line) + StyleDim.Render("  ·  "+strings.Join(flags, " · ")) + "\n" +
		StyleDim.Render(preview) + "\n" +
		StyleDim.Render(m.status)
}

// draw paints element k onto cv.
func (m *editModel) draw(cv *canvas, k badge.ElementKey) {
	box := m.ed.Box()
	c := m.ed.Center(k)
	cx := (c.X - box.X) / cellW
	cy := (c.Y - box.Y) / cellH
	label := elementLabels[k]

	if k.IsBox() {
		side := m.ed.WidthPercent(k) / 100 * box.W
		w := max(int(math.Round(side/cellW)), 1)
		h := max(int(math.Round(side/cellH)), 1)
		x0 := int(math.Round(cx - float64(w)/2))
		y0 := int(math.Round(cy - float64(h)/2))
		fill := '░'
		if k == badge.ElementQRCode {
			fill = '▒'
		}
		for y := y0; y < y0+h; y++ {
			for x := x0; x < x0+w; x++ {
				cv.set(x, y, fill, k)
			}
		}
		if len(label) <= w {
			cv.text(x0+(w-len(label))/2, y0+h/2, label, k)
		}
		return
	}

	n := len([]rune(label))
	x0 := int(math.Round(cx - float64(n)/2))
	switch m.ed.Positions().Get(k).TextAlign {
	case badge.AlignLeft:
		x0 = int(math.Round(cx))
	case badge.AlignRight:
		x0 = int(math.Round(cx)) - n
	}
	cv.text(x0, int(cy), label, k)
}

// =============================================================================
// canvas - character grid with per-cell element ownership
// =============================================================================

type canvas struct {
	cols, rows int
	cells      []rune
	owner      []badge.ElementKey
}

func newCanvas(cols, rows int) *canvas {
	cv := &canvas{
		cols:  cols,
		rows:  rows,
		cells: make([]rune, cols*rows),
		owner: make([]badge.ElementKey, cols*rows),
	}
	for i := range cv.cells {
		cv.cells[i] = '·'
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, k badge.ElementKey) {
	if x < 0 || y < 0 || x >= cv.cols || y >= cv.rows {
		return
	}
	cv.cells[y*cv.cols+x] = r
	cv.owner[y*cv.cols+x] = k
}

func (cv *canvas) text(x, y int, s string, k badge.ElementKey) {
	for i, r := range []rune(s) {
		cv.set(x+i, y, r, k)
	}
}

// render styles runs of cells that share an owner.
func (cv *canvas) render(selected, active badge.ElementKey) string {
	var b strings.Builder
	for y := 0; y < cv.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := y * cv.cols
		start := 0
		for x := 1; x <= cv.cols; x++ {
			if x < cv.cols && cv.owner[row+x] == cv.owner[row+start] {
				continue
			}
			k := cv.owner[row+start]
			b.WriteString(cellStyle(k, selected, active).Render(string(cv.cells[row+start : row+x])))
			start = x
		}
	}
	return b.String()
}

func cellStyle(k, selected, active badge.ElementKey) lipgloss.Style {
	switch {
	case k == "":
		return StyleDim
	case k == active:
		return editActiveStyle
	case k == selected:
		return editSelectedStyle
	}
	return editElementStyle
}
