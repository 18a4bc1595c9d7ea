package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dailycard/internal/appearance"
	"github.com/abelbrown/dailycard/internal/entitlement"
	"github.com/abelbrown/dailycard/internal/favorites"
	"github.com/abelbrown/dailycard/internal/gate"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/paging"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
)

var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)

type harness struct {
	app   App
	pager *paging.Controller
	favs  *favorites.Store
	ent   *entitlement.Source
}

func newHarness(t *testing.T, poolSize int, paying bool) *harness {
	t.Helper()
	items := make([]model.Item, poolSize)
	for i := range items {
		items[i] = model.Item{ID: fmt.Sprintf("q-%d", i), Text: fmt.Sprintf("Quote number %d", i), Author: "Author"}
	}

	kv := store.NewMemory()
	g := gate.New(kv, gate.DefaultLimits())
	ent := entitlement.NewSource(paying)
	now := func() time.Time { return testNow }
	pager := paging.New(paging.Deps{
		Scheduler:   schedule.New(items),
		Gate:        g,
		Store:       kv,
		Entitlement: ent,
		Now:         now,
	}, paging.DefaultConfig())
	favs := favorites.Load(kv)

	app := NewApp(Deps{
		Pager:       pager,
		Favorites:   favs,
		Gate:        g,
		Appearance:  appearance.Load(kv, g),
		Entitlement: ent,
		Now:         now,
	})
	h := &harness{app: app, pager: pager, favs: favs, ent: ent}
	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	m, cmd := h.app.Update(msg)
	h.app = m.(App)
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestAppInit(t *testing.T) {
	h := newHarness(t, 5, false)
	if cmd := h.app.Init(); cmd == nil {
		t.Error("Init should set the window title")
	}
}

func TestViewBeforeSize(t *testing.T) {
	app := NewApp(Deps{})
	if got := app.View(); got != "Loading..." {
		t.Errorf("expected Loading..., got %q", got)
	}
}

func TestKeyboardPaging(t *testing.T) {
	h := newHarness(t, 20, true)

	h.key("j")
	if h.pager.Position() != 1 {
		t.Fatalf("j should advance to 1, got %d", h.pager.Position())
	}
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	if h.pager.Position() != 2 {
		t.Fatalf("down should advance to 2, got %d", h.pager.Position())
	}
	h.key("k")
	if h.pager.Position() != 1 {
		t.Fatalf("k should go back to 1, got %d", h.pager.Position())
	}
}

func TestFreeUserGetsPaywall(t *testing.T) {
	h := newHarness(t, 20, false)

	h.key("j")
	h.key("j")
	h.key("j")

	if h.pager.Position() != 2 {
		t.Errorf("position should stay at 2, got %d", h.pager.Position())
	}
	if !h.app.PaywallOpen() {
		t.Fatal("expected the paywall to open")
	}
	if !strings.Contains(h.app.View(), "Get Full Access") {
		t.Error("paywall view should render")
	}

	// the prompt is modal
	h.key("j")
	if h.pager.Position() != 2 {
		t.Errorf("paging should be blocked behind the paywall")
	}

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.app.PaywallOpen() {
		t.Error("esc should close the paywall")
	}
}

func TestUpgradeClosesPaywall(t *testing.T) {
	h := newHarness(t, 20, false)
	h.key("j")
	h.key("j")
	h.key("j")

	h.ent.Set(true)
	h.send(EntitlementChanged{Paying: true})
	if h.app.PaywallOpen() {
		t.Error("paywall should close after upgrade")
	}
	h.key("j")
	if h.pager.Position() != 3 {
		t.Errorf("premium user should advance to 3, got %d", h.pager.Position())
	}
}

func TestBoundaryBounce(t *testing.T) {
	h := newHarness(t, 20, true)

	cmd := h.key("k")
	if h.app.Offset() == 0 {
		t.Error("backward at start should displace the card")
	}
	if cmd == nil {
		t.Fatal("expected a spring tick")
	}
	for i := 0; i < 600 && h.app.Offset() != 0; i++ {
		h.send(springTick{})
	}
	if h.app.Offset() != 0 {
		t.Errorf("spring should settle to 0, got %f", h.app.Offset())
	}
	if h.app.PaywallOpen() {
		t.Error("boundary must not open the paywall")
	}
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestMouseDragAdvances(t *testing.T) {
	h := newHarness(t, 20, true)

	h.send(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 40, 20))
	h.send(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 40, 15))
	h.send(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 40, 10))
	if !h.pager.Dragging() {
		t.Fatal("vertical motion past the dead zone should start a drag")
	}
	h.send(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 40, 10))

	if h.pager.Position() != 1 {
		t.Errorf("drag up should advance to 1, got %d", h.pager.Position())
	}
	if h.pager.Dragging() {
		t.Error("release should end the drag")
	}
}

func TestMouseShortDragSpringsBack(t *testing.T) {
	h := newHarness(t, 20, true)

	h.send(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 40, 20))
	h.send(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 40, 18))
	h.send(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 40, 18))
	cmd := h.send(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 40, 18))

	if h.pager.Position() != 0 {
		t.Errorf("short drag should not commit, got %d", h.pager.Position())
	}
	if cmd == nil {
		t.Error("spring-back should animate")
	}
}

func TestMouseHorizontalDragIgnored(t *testing.T) {
	h := newHarness(t, 20, true)

	h.send(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, 20))
	h.send(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 60, 18))
	h.send(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 60, 18))

	if h.pager.Position() != 0 {
		t.Errorf("horizontal drag should not page, got %d", h.pager.Position())
	}
}

func TestMouseWheel(t *testing.T) {
	h := newHarness(t, 20, true)
	h.send(mouse(tea.MouseActionPress, tea.MouseButtonWheelDown, 0, 0))
	if h.pager.Position() != 1 {
		t.Errorf("wheel down should advance, got %d", h.pager.Position())
	}
	h.send(mouse(tea.MouseActionPress, tea.MouseButtonWheelUp, 0, 0))
	if h.pager.Position() != 0 {
		t.Errorf("wheel up should go back, got %d", h.pager.Position())
	}
}

func TestFavoriteToggleAndLimit(t *testing.T) {
	h := newHarness(t, 20, false)

	h.key("f")
	if h.favs.Len() != 1 {
		t.Fatalf("expected 1 favorite, got %d", h.favs.Len())
	}
	h.key("f")
	if h.favs.Len() != 0 {
		t.Fatalf("second press should remove, got %d", h.favs.Len())
	}

	// fill the free collection directly
	for i := 0; i < 3; i++ {
		h.favs.Toggle(model.Item{ID: fmt.Sprintf("other-%d", i), Text: "x", Author: "y"})
	}
	h.key("f")
	if h.favs.Len() != 3 {
		t.Errorf("free user should be capped at 3, got %d", h.favs.Len())
	}
	if !h.app.PaywallOpen() {
		t.Error("collection limit should open the paywall")
	}
}

func TestFavoritesTab(t *testing.T) {
	h := newHarness(t, 20, true)

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if h.app.Tab() != int(tabFavorites) {
		t.Fatal("tab should switch to favorites")
	}
	if !strings.Contains(h.app.View(), "No Favorites Yet") {
		t.Error("empty favorites should show the empty state")
	}

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.key("f")
	h.key("j")
	h.key("f")
	h.send(tea.KeyMsg{Type: tea.KeyTab})

	if !strings.Contains(h.app.View(), "Your Collection") {
		t.Error("favorites list should render")
	}
	h.key("j")
	h.key("x")
	if h.favs.Len() != 1 {
		t.Errorf("x should remove the selected favorite, got %d left", h.favs.Len())
	}
	h.key("x")
	h.key("x")
	if h.favs.Len() != 0 {
		t.Errorf("expected empty collection, got %d", h.favs.Len())
	}
}

func TestFontGate(t *testing.T) {
	h := newHarness(t, 5, false)
	h.key("t")
	if !h.app.PaywallOpen() {
		t.Error("free user should be offered an upgrade for fonts")
	}

	p := newHarness(t, 5, true)
	p.key("t")
	if p.app.PaywallOpen() {
		t.Error("premium user should switch fonts freely")
	}
	if !strings.Contains(p.app.View(), "Modern") {
		t.Error("status bar should show the new font")
	}
}

func TestDayChangedResets(t *testing.T) {
	h := newHarness(t, 20, true)
	h.key("j")
	h.key("j")

	h.send(DayChanged{Now: testNow.Add(2 * time.Hour)})
	if h.pager.Position() != 2 {
		t.Errorf("same day should not reset, got %d", h.pager.Position())
	}

	h.send(DayChanged{Now: testNow.AddDate(0, 0, 1)})
	if h.pager.Position() != 0 {
		t.Errorf("new day should reset, got %d", h.pager.Position())
	}
	if h.app.Notice() == "" {
		t.Error("new day should leave a notice")
	}
}

func TestNoticeExpires(t *testing.T) {
	h := newHarness(t, 5, true)
	h.key("f")
	if h.app.Notice() == "" {
		t.Fatal("expected a notice")
	}
	h.send(noticeExpired{id: h.app.noticeID - 1})
	if h.app.Notice() == "" {
		t.Error("stale expiry should not clear a newer notice")
	}
	h.send(noticeExpired{id: h.app.noticeID})
	if h.app.Notice() != "" {
		t.Error("notice should clear")
	}
}

func TestEndCardView(t *testing.T) {
	h := newHarness(t, 25, true)
	for i := 0; i < 20; i++ {
		h.key("j")
	}
	if !strings.Contains(h.app.View(), "That's it for now.") {
		t.Error("premium user should reach the end card")
	}
}

func TestEmptyPoolView(t *testing.T) {
	h := newHarness(t, 0, false)
	if !strings.Contains(h.app.View(), "Nothing to show today.") {
		t.Error("empty pool should render the empty state")
	}
	h.key("j")
	if h.app.PaywallOpen() {
		t.Error("empty pool is a boundary, not a paywall")
	}
}

func TestStatusBarShowsRemainingViews(t *testing.T) {
	h := newHarness(t, 20, false)
	if !strings.Contains(h.app.View(), "2 views left today") {
		t.Error("anchor view should leave 2 free views")
	}
	h.key("j")
	if !strings.Contains(h.app.View(), "1 views left today") {
		t.Error("expected 1 view left after advancing")
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, 5, false)
	cmd := h.key("q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestShiftLines(t *testing.T) {
	block := "a\nb\nc"
	if got := shiftLines(block, 1, 3); got != "\na\nb" {
		t.Errorf("shift down: %q", got)
	}
	if got := shiftLines(block, -1, 3); got != "b\nc\n" {
		t.Errorf("shift up: %q", got)
	}
	if got := shiftLines(block, 0, 3); got != block {
		t.Errorf("no shift: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello w…" {
		t.Errorf("truncate: %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("no truncate: %q", got)
	}
	if got := truncate("anything", -1); got != "" {
		t.Errorf("negative width: %q", got)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("dark")

	SetTheme("light")
	if got := CardText.GetForeground(); got != lipgloss.Color("235") {
		t.Errorf("light theme foreground = %v", got)
	}
	SetTheme("dark")
	if got := EndTitle.GetForeground(); got != lipgloss.Color("255") {
		t.Errorf("dark theme foreground = %v", got)
	}
}
