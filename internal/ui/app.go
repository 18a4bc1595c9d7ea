package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dailycard/internal/appearance"
	"github.com/abelbrown/dailycard/internal/entitlement"
	"github.com/abelbrown/dailycard/internal/favorites"
	"github.com/abelbrown/dailycard/internal/gate"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/paging"
)

// Gesture units: the pager thinks in points, the terminal in cells.
const (
	rowPoints = 16.0
	colPoints = 8.0

	// momentum extrapolates the last motion step into a predicted end.
	momentum = 4.0

	noticeTTL = 3 * time.Second
)

// Deps are the services the UI drives. All of them are owned by the UI
// goroutine once the program runs.
type Deps struct {
	Pager       *paging.Controller
	Favorites   *favorites.Store
	Gate        *gate.Gate
	Appearance  *appearance.Settings
	Entitlement entitlement.Snapshot
	// Now defaults to time.Now.
	Now func() time.Time
}

type tab int

const (
	tabFeed tab = iota
	tabFavorites
)

// paywallReason says which limit opened the upgrade prompt.
type paywallReason int

const (
	reasonScroll paywallReason = iota
	reasonQuota
	reasonCollection
	reasonFont
)

// App is the root Bubble Tea model.
type App struct {
	deps Deps
	keys keyMap
	help help.Model

	tab       tab
	favCursor int

	width  int
	height int
	ready  bool

	// mouse gesture, in cells relative to the press
	pressed bool
	startX  int
	startY  int
	lastDY  float64
	prevDY  float64

	// card offset in rows, animated back to 0 by the spring
	spring    harmonica.Spring
	offset    float64
	velocity  float64
	animating bool

	paywall bool
	reason  paywallReason

	notice   string
	noticeID int
}

// NewApp creates the App.
func NewApp(deps Deps) App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Entitlement == nil {
		deps.Entitlement = entitlement.Static(false)
	}
	return App{
		deps:   deps,
		keys:   defaultKeyMap(),
		help:   help.New(),
		spring: harmonica.NewSpring(harmonica.FPS(60), 7.0, 0.6),
	}
}

// Init sets the window title.
func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle("dailycard")
}

func (a App) paying() bool {
	return a.deps.Entitlement.IsPaying()
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.deps.Pager.SetViewport(float64(a.bodyHeight()) * rowPoints)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case DayChanged:
		if !a.deps.Pager.CheckDay(msg.Now) {
			return a, nil
		}
		logging.Info("ui: new day", "date", msg.Now.Format("2006-01-02"))
		a.paywall = false
		a.offset, a.velocity = 0, 0
		return a, a.setNotice("A new day, a new card")

	case EntitlementChanged:
		if msg.Paying {
			a.paywall = false
			return a, a.setNotice("Premium unlocked")
		}
		return a, nil

	case springTick:
		return a.stepSpring()

	case noticeExpired:
		if msg.id == a.noticeID {
			a.notice = ""
		}
		return a, nil
	}

	return a, nil
}

// handleKey processes keyboard input.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.deps.Pager.SetViewport(float64(a.bodyHeight()) * rowPoints)
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		a.paywall = false
		if a.tab == tabFeed {
			a.tab = tabFavorites
			a.clampFavCursor()
		} else {
			a.tab = tabFeed
		}
		return a, nil

	case key.Matches(msg, a.keys.Dismiss):
		a.paywall = false
		return a, nil

	case key.Matches(msg, a.keys.Font):
		if !a.deps.Appearance.CycleFont(a.paying()) {
			a.openPaywall(reasonFont)
			return a, nil
		}
		return a, a.setNotice("Font: " + a.deps.Appearance.Chosen().Font.DisplayName())

	case key.Matches(msg, a.keys.Size):
		a.deps.Appearance.CycleSize()
		return a, nil
	}

	if a.paywall {
		// the prompt is modal; backing away closes it
		if key.Matches(msg, a.keys.Prev) {
			a.paywall = false
		}
		return a, nil
	}

	if a.tab == tabFavorites {
		return a.handleFavoritesKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Next):
		return a, a.apply(a.deps.Pager.Forward())
	case key.Matches(msg, a.keys.Prev):
		return a, a.apply(a.deps.Pager.Backward())
	case key.Matches(msg, a.keys.Favorite):
		return a, a.toggleFavorite()
	}
	return a, nil
}

func (a App) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := a.deps.Favorites.Len()
	switch {
	case key.Matches(msg, a.keys.Next):
		if a.favCursor < n-1 {
			a.favCursor++
		}
	case key.Matches(msg, a.keys.Prev):
		if a.favCursor > 0 {
			a.favCursor--
		}
	case key.Matches(msg, a.keys.Remove), key.Matches(msg, a.keys.Favorite):
		items := a.deps.Favorites.Items()
		if a.favCursor < len(items) {
			a.deps.Favorites.Remove(items[a.favCursor])
			a.clampFavCursor()
			return a, a.setNotice("Removed from favorites")
		}
	}
	return a, nil
}

func (a *App) clampFavCursor() {
	n := a.deps.Favorites.Len()
	if a.favCursor >= n {
		a.favCursor = n - 1
	}
	if a.favCursor < 0 {
		a.favCursor = 0
	}
}

// handleMouse maps press, motion and release of the left button to a drag
// gesture, and the wheel to single steps.
func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.tab != tabFeed || a.paywall {
		return a, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			return a, a.apply(a.deps.Pager.Forward())
		case tea.MouseButtonWheelUp:
			return a, a.apply(a.deps.Pager.Backward())
		case tea.MouseButtonLeft:
			a.pressed = true
			a.startX, a.startY = msg.X, msg.Y
			a.lastDY, a.prevDY = 0, 0
			a.offset, a.velocity = 0, 0
			a.animating = false
		}
		return a, nil

	case tea.MouseActionMotion:
		if !a.pressed {
			return a, nil
		}
		dx := float64(msg.X-a.startX) * colPoints
		dy := float64(msg.Y-a.startY) * rowPoints
		a.prevDY, a.lastDY = a.lastDY, dy
		a.deps.Pager.Drag(dx, dy)
		a.offset = a.deps.Pager.DisplayOffset() / rowPoints
		return a, nil

	case tea.MouseActionRelease:
		if !a.pressed {
			return a, nil
		}
		a.pressed = false
		a.offset = a.deps.Pager.DisplayOffset() / rowPoints
		predicted := a.lastDY + (a.lastDY-a.prevDY)*momentum
		return a, a.apply(a.deps.Pager.EndDrag(a.lastDY, predicted))
	}
	return a, nil
}

// apply reacts to a pager outcome: committed moves snap, everything else
// springs back, paywall outcomes open the upgrade prompt.
func (a *App) apply(out paging.Outcome) tea.Cmd {
	logging.Debug("ui: page", "outcome", out.String(), "position", a.deps.Pager.Position())

	switch out {
	case paging.Advanced, paging.Retreated:
		a.offset, a.velocity = 0, 0
		a.animating = false
		return nil
	case paging.PaywallRequired:
		a.openPaywall(reasonScroll)
	case paging.QuotaExhausted:
		a.openPaywall(reasonQuota)
	case paging.AtEnd:
		if a.offset == 0 {
			a.offset = -1
		}
	case paging.AtStart:
		if a.offset == 0 {
			a.offset = 1
		}
	}
	return a.kick()
}

func (a *App) openPaywall(r paywallReason) {
	logging.Debug("ui: paywall", "reason", int(r))
	a.paywall = true
	a.reason = r
}

// kick starts the spring-back animation if the card is displaced.
func (a *App) kick() tea.Cmd {
	if a.offset == 0 || a.animating {
		return nil
	}
	a.animating = true
	return springCmd()
}

func springCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return springTick{}
	})
}

func (a App) stepSpring() (tea.Model, tea.Cmd) {
	if !a.animating {
		return a, nil
	}
	a.offset, a.velocity = a.spring.Update(a.offset, a.velocity, 0)
	if math.Abs(a.offset) < 0.05 && math.Abs(a.velocity) < 0.05 {
		a.offset, a.velocity = 0, 0
		a.animating = false
		return a, nil
	}
	return a, springCmd()
}

func (a *App) toggleFavorite() tea.Cmd {
	card := a.deps.Pager.Current()
	if card.Kind != paging.KindItem {
		return nil
	}
	fav := a.deps.Favorites
	if !fav.IsFavorite(card.Item) && !a.deps.Gate.CanAddToCollection(fav.Len(), a.paying()) {
		a.openPaywall(reasonCollection)
		return nil
	}
	if fav.Toggle(card.Item) {
		return a.setNotice("Saved to favorites")
	}
	return a.setNotice("Removed from favorites")
}

func (a *App) setNotice(s string) tea.Cmd {
	a.notice = s
	a.noticeID++
	id := a.noticeID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpired{id: id}
	})
}

// bodyHeight is the height left for the card after tabs, status and help.
func (a App) bodyHeight() int {
	h := a.height - 2 - lipgloss.Height(a.help.View(a.keys))
	if h < 1 {
		return 1
	}
	return h
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	height := a.bodyHeight()
	var body string
	switch {
	case a.paywall:
		body = a.renderPaywall(height)
	case a.tab == tabFavorites:
		body = a.renderFavorites(height)
	default:
		body = a.renderFeed(height)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		body,
		a.renderStatusBar(),
		HelpStyle.Render(a.help.View(a.keys)),
	)
}

// Tab returns the active tab index (for testing).
func (a App) Tab() int {
	return int(a.tab)
}

// PaywallOpen reports whether the upgrade prompt is showing (for testing).
func (a App) PaywallOpen() bool {
	return a.paywall
}

// Offset returns the card displacement in rows (for testing).
func (a App) Offset() float64 {
	return a.offset
}

// Notice returns the transient status message (for testing).
func (a App) Notice() string {
	return a.notice
}
