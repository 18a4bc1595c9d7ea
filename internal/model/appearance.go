package model

// FontFamily selects the typeface a card is rendered with.
type FontFamily string

const (
	FontSerif FontFamily = "serif"
	FontSans  FontFamily = "sans"
	FontMono  FontFamily = "mono"
)

// Fonts lists every font family in display order.
var Fonts = []FontFamily{FontSerif, FontSans, FontMono}

// DisplayName returns the label shown in the style picker.
func (f FontFamily) DisplayName() string {
	switch f {
	case FontSans:
		return "Modern"
	case FontMono:
		return "Type"
	default:
		return "Classic"
	}
}

// TextSize selects the card text size.
type TextSize string

const (
	SizeSmall  TextSize = "sm"
	SizeMedium TextSize = "md"
	SizeLarge  TextSize = "lg"
)

// Sizes lists every text size in display order.
var Sizes = []TextSize{SizeSmall, SizeMedium, SizeLarge}

// Appearance is the user's card style.
type Appearance struct {
	Font FontFamily
	Size TextSize
}

// DefaultAppearance is the only style available to non-paying users.
var DefaultAppearance = Appearance{Font: FontSerif, Size: SizeMedium}

// Normalize replaces unknown values with the defaults.
func (a Appearance) Normalize() Appearance {
	switch a.Font {
	case FontSerif, FontSans, FontMono:
	default:
		a.Font = DefaultAppearance.Font
	}
	switch a.Size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		a.Size = DefaultAppearance.Size
	}
	return a
}
