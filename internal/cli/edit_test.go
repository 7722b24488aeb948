package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/editor"
	"github.com/matzehuels/badgekit/pkg/io"
	"github.com/matzehuels/badgekit/pkg/render"
)

func newTestEditModel(t *testing.T) *editModel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "badge.json")
	if err := io.ExportConfiguration(badge.DefaultConfiguration(), path); err != nil {
		t.Fatal(err)
	}
	cfg, err := io.ImportConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	m := newEditModel(context.Background(), path, cfg, render.NewPreview(render.NewEngine()))
	m.previewPath = filepath.Join(t.TempDir(), "preview.png")
	t.Cleanup(m.close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// cellOf returns the terminal cell containing editor point p.
func cellOf(p editor.Point) (int, int) {
	return int(p.X / cellW), int(p.Y / cellH)
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestEditFitsBoxBelowHeader(t *testing.T) {
	m := newTestEditModel(t)
	box := m.ed.Box()
	if box.X != cellW || box.Y != (headerRows+1)*cellH {
		t.Errorf("box origin = (%v, %v)", box.X, box.Y)
	}
	if rows := box.H / cellH; rows > float64(60-headerRows-footerRows-2) {
		t.Errorf("box is %v rows, does not fit", rows)
	}
	if !strings.Contains(m.View(), "Visitor Name") {
		t.Error("View() does not show the name element")
	}
}

func TestEditDragCommits(t *testing.T) {
	m := newTestEditModel(t)
	before := m.ed.Positions().Get(badge.ElementName)
	x, y := cellOf(m.ed.Center(badge.ElementName))

	m.Update(mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft))
	if state, k := m.ed.State(); state != editor.Dragging || k != badge.ElementName {
		t.Fatalf("state after press = %v %q, want dragging name", state, k)
	}
	m.Update(mouse(x, y+4, tea.MouseActionMotion, tea.MouseButtonLeft))
	_, cmd := m.Update(mouse(x, y+4, tea.MouseActionRelease, tea.MouseButtonLeft))

	if cmd == nil {
		t.Error("release did not schedule a preview render")
	}
	if !m.dirty || !m.cfg.UseCustomPositions {
		t.Errorf("dirty = %v, custom = %v, want both", m.dirty, m.cfg.UseCustomPositions)
	}
	if got := m.cfg.PositionFor(badge.ElementName); got.Y <= before.Y {
		t.Errorf("name y = %v, want below %v", got.Y, before.Y)
	}
}

func TestEditPointerLeaveCommits(t *testing.T) {
	m := newTestEditModel(t)
	x, y := cellOf(m.ed.Center(badge.ElementName))

	m.Update(mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft))
	m.Update(mouse(x, 0, tea.MouseActionMotion, tea.MouseButtonLeft))

	if state, _ := m.ed.State(); state != editor.Idle {
		t.Errorf("state = %v after leaving the badge, want idle", state)
	}
	if !m.dirty {
		t.Error("leaving the badge did not commit")
	}
}

func TestEditResizeBox(t *testing.T) {
	m := newTestEditModel(t)
	x, y := cellOf(m.ed.Center(badge.ElementPhoto))

	m.Update(mouse(x, y, tea.MouseActionPress, tea.MouseButtonRight))
	if state, _ := m.ed.State(); state != editor.Resizing {
		t.Fatalf("right press state = %v, want resizing", state)
	}
	m.Update(mouse(x+3, y, tea.MouseActionMotion, tea.MouseButtonRight))
	m.Update(mouse(x+3, y, tea.MouseActionRelease, tea.MouseButtonRight))

	if w := m.cfg.PositionFor(badge.ElementPhoto).Width; w < badge.MinBoxWidth {
		t.Errorf("photo width = %v, want at least %v", w, badge.MinBoxWidth)
	}
}

func TestEditKeys(t *testing.T) {
	m := newTestEditModel(t)

	m.selected = badge.ElementName
	before := m.ed.Positions().Get(badge.ElementName)
	m.Update(keyMsg("down"))
	if got := m.cfg.PositionFor(badge.ElementName); got.Y != before.Y+nudgeStep {
		t.Errorf("nudged y = %v, want %v", got.Y, before.Y+nudgeStep)
	}

	m.Update(keyMsg("g"))
	if m.ed.Snap() != badge.DefaultSnapGap {
		t.Errorf("snap after g = %v", m.ed.Snap())
	}
	if m.status != "Grid snap 2%" {
		t.Errorf("status after g = %q", m.status)
	}
	m.Update(keyMsg("g"))
	if m.ed.Snap() != 0 {
		t.Errorf("snap after second g = %v", m.ed.Snap())
	}

	m.Update(keyMsg("r"))
	if m.cfg.UseCustomPositions {
		t.Error("reset left custom positions enabled")
	}

	m.Update(keyMsg("tab"))
	if m.selected == badge.ElementName {
		t.Error("tab did not change the selection")
	}
}

func TestEditSaveAndQuit(t *testing.T) {
	m := newTestEditModel(t)
	m.selected = badge.ElementName
	m.Update(keyMsg("down"))

	if _, cmd := m.Update(keyMsg("q")); isQuit(cmd) {
		t.Fatal("q with unsaved changes quit without confirmation")
	}
	if _, cmd := m.Update(keyMsg("s")); isQuit(cmd) {
		t.Fatal("s quit")
	}
	if m.dirty || !m.saved {
		t.Fatalf("dirty = %v, saved = %v after s", m.dirty, m.saved)
	}
	saved, err := io.ImportConfiguration(m.path)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.UseCustomPositions || saved.PositionFor(badge.ElementName) != m.cfg.PositionFor(badge.ElementName) {
		t.Error("saved configuration does not match the editor")
	}

	if _, cmd := m.Update(keyMsg("q")); !isQuit(cmd) {
		t.Error("q after saving did not quit")
	}
}

func TestEditPreviewSuperseded(t *testing.T) {
	m := newTestEditModel(t)
	m.Update(previewMsg{err: render.ErrSuperseded})
	if m.previewErr != nil || m.previews != 0 {
		t.Errorf("superseded preview counted: err=%v n=%d", m.previewErr, m.previews)
	}

	msg := m.renderPreview()()
	m.Update(msg)
	if m.previewErr != nil || m.previews != 1 {
		t.Errorf("preview: err=%v n=%d", m.previewErr, m.previews)
	}
}

func TestCanvasRender(t *testing.T) {
	cv := newCanvas(6, 2)
	cv.text(1, 0, "ab", badge.ElementName)
	cv.set(9, 9, 'x', badge.ElementName)

	lines := strings.Split(cv.render("", ""), "\n")
	if len(lines) != 2 {
		t.Fatalf("rows = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "ab") {
		t.Errorf("row 0 = %q, want the text", lines[0])
	}
}
