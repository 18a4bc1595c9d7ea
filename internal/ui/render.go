package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/paging"
)

func (a App) renderTabs() string {
	feed := TabInactive.Render("Today")
	favs := TabInactive.Render(fmt.Sprintf("Favorites (%d)", a.deps.Favorites.Len()))
	if a.tab == tabFeed {
		feed = TabActive.Render("Today")
	} else {
		favs = TabActive.Render(fmt.Sprintf("Favorites (%d)", a.deps.Favorites.Len()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, feed, " ", favs)
}

func (a App) renderFeed(height int) string {
	card := a.deps.Pager.Current()
	block := a.renderCard(card)
	placed := lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, block)
	return shiftLines(placed, int(math.Round(a.offset)), height)
}

func (a App) renderCard(card paging.Card) string {
	switch card.Kind {
	case paging.KindEmpty:
		return Muted.Render("Nothing to show today.")

	case paging.KindEnd:
		return lipgloss.JoinVertical(lipgloss.Center,
			EndTitle.Render("That's it for now."),
			"",
			Muted.Align(lipgloss.Center).Render("You've reached the end of this collection.\nCheck back tomorrow for more."),
		)
	}

	item := card.Item
	style := textStyle(a.deps.Appearance.Effective(a.paying()), a.width)

	var lines []string
	if card.IsAnchor() {
		lines = append(lines, Muted.Render("Today's card"), "")
	}
	lines = append(lines,
		style.Render("“"+item.Text+"”"),
		"",
		CardAuthor.Width(style.GetWidth()).Render("— "+item.Author),
	)

	meta := []string{}
	if item.Category != nil && *item.Category != "" {
		meta = append(meta, CardCategory.Render(*item.Category))
	}
	if a.deps.Favorites.IsFavorite(item) {
		meta = append(meta, Heart.Render("♥ saved"))
	}
	if len(meta) > 0 {
		lines = append(lines, "", strings.Join(meta, "  "))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

var paywallCopy = map[paywallReason]string{
	reasonScroll:     "The free plan shows a few cards a day.",
	reasonQuota:      "You've used all of today's views.",
	reasonCollection: "The free plan saves up to %d favorites.",
	reasonFont:       "Classic is the free font.",
}

func (a App) renderPaywall(height int) string {
	reason := paywallCopy[a.reason]
	if a.reason == reasonCollection {
		reason = fmt.Sprintf(reason, a.deps.Gate.Limits().FreeCollection)
	}
	limits := a.deps.Gate.Limits()
	box := PaywallBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		PaywallTitle.Render("Get Full Access"),
		"",
		reason,
		"",
		"♛ Save unlimited favorites",
		fmt.Sprintf("♛ View up to %d cards a day", limits.PremiumDailyViews),
		"♛ Unlock all font styles",
		"",
		Muted.Render("[esc] back"),
	))
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, box)
}

func (a App) renderFavorites(height int) string {
	items := a.deps.Favorites.Items()
	if len(items) == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			EndTitle.Render("No Favorites Yet"),
			"",
			Muted.Render("Press f on a card you love to save it here."),
		)
		return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, empty)
	}

	lines := []string{EndTitle.Render("Your Collection"), ""}
	visible := height - len(lines)
	if visible < 1 {
		visible = 1
	}
	start := 0
	if a.favCursor >= visible {
		start = a.favCursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
	}
	for i := start; i < end; i++ {
		line := truncate(listLine(items[i]), a.width-4)
		if i == a.favCursor {
			lines = append(lines, ListSelected.Render(line))
		} else {
			lines = append(lines, ListItem.Render(line))
		}
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}

func listLine(item model.Item) string {
	return "“" + item.Text + "” — " + item.Author
}

func (a App) renderStatusBar() string {
	var parts []string
	now := a.deps.Now()
	paying := a.paying()

	if a.tab == tabFeed {
		p := a.deps.Pager
		if p.Len() > 0 {
			pos := p.Position() + 1
			if pos > p.Len() {
				pos = p.Len()
			}
			parts = append(parts, StatusBarKey.Render(fmt.Sprintf("%d/%d", pos, p.Len())))
		}
	} else {
		saved := fmt.Sprintf("%d saved", a.deps.Favorites.Len())
		if !paying {
			saved = fmt.Sprintf("%d/%d saved", a.deps.Favorites.Len(), a.deps.Gate.Limits().FreeCollection)
		}
		parts = append(parts, StatusBarKey.Render(saved))
	}

	if paying {
		parts = append(parts, StatusBarText.Render("Premium"))
	} else {
		left := a.deps.Gate.Remaining(now, false)
		parts = append(parts, StatusBarText.Render(fmt.Sprintf("%d views left today", left)))
	}
	parts = append(parts, StatusBarText.Render(a.deps.Appearance.Effective(paying).Font.DisplayName()))

	if a.notice != "" {
		parts = append(parts, a.notice)
	}
	return StatusBar.Width(a.width).Render(strings.Join(parts, "  ·  "))
}

// shiftLines moves a block of height lines down by n (up when negative),
// padding with blank lines and keeping the height.
func shiftLines(s string, n, height int) string {
	if n == 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if n > 0 {
		if n > height {
			n = height
		}
		lines = append(make([]string, n), lines...)
		if len(lines) > height {
			lines = lines[:height]
		}
	} else {
		n = -n
		if n > len(lines) {
			n = len(lines)
		}
		lines = append(lines[n:], make([]string, n)...)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to maxLen display cells, adding "…" if truncated.
func truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	return runewidth.Truncate(s, maxLen, "…")
}
