// Package appearance persists the card style. Fonts other than the default
// are a paid feature; sizes are free.
package appearance

import (
	"errors"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/gate"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/store"
)

// Key is the KV key of the persisted style.
const Key = "appearanceSettings"

// Settings holds the chosen style.
type Settings struct {
	kv      store.KV
	gate    *gate.Gate
	current model.Appearance
}

// Load reads the stored style, falling back to the default on missing or
// malformed bytes.
func Load(kv store.KV, g *gate.Gate) *Settings {
	s := &Settings{kv: kv, gate: g, current: model.DefaultAppearance}
	b, err := kv.Get(Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warn("appearance: read", "error", err)
		}
		return s
	}
	a, err := codec.DecodeAppearance(b)
	if err != nil {
		logging.Warn("appearance: discarding malformed style", "error", err)
		return s
	}
	s.current = a
	return s
}

// Chosen returns the stored style, regardless of plan.
func (s *Settings) Chosen() model.Appearance {
	return s.current
}

// Effective returns the style to render with: a paid font chosen while
// paying falls back to the default font after a downgrade.
func (s *Settings) Effective(paying bool) model.Appearance {
	a := s.current
	if !s.gate.CanUseFont(a.Font, paying) {
		a.Font = model.DefaultAppearance.Font
	}
	return a
}

// SetFont stores f if the plan allows it and reports whether it did.
func (s *Settings) SetFont(f model.FontFamily, paying bool) bool {
	if !s.gate.CanUseFont(f, paying) {
		return false
	}
	s.current.Font = f
	s.current = s.current.Normalize()
	s.save()
	return true
}

// SetSize stores sz.
func (s *Settings) SetSize(sz model.TextSize) {
	s.current.Size = sz
	s.current = s.current.Normalize()
	s.save()
}

// CycleFont moves to the next font the plan allows. It returns false when
// the plan allows no other font.
func (s *Settings) CycleFont(paying bool) bool {
	start := indexOf(model.Fonts, s.current.Font)
	for step := 1; step < len(model.Fonts); step++ {
		f := model.Fonts[(start+step)%len(model.Fonts)]
		if s.SetFont(f, paying) {
			return true
		}
	}
	return false
}

// CycleSize moves to the next text size.
func (s *Settings) CycleSize() {
	i := indexOf(model.Sizes, s.current.Size)
	s.SetSize(model.Sizes[(i+1)%len(model.Sizes)])
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func (s *Settings) save() {
	if err := s.kv.Set(Key, codec.EncodeAppearance(s.current)); err != nil {
		logging.Warn("appearance: write", "error", err)
	}
}
