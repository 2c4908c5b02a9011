package ui

import "image/color"

type Theme struct {
	AppBackground color.RGBA
	Gutter        color.RGBA
	Row           color.RGBA
	RowSelected   color.RGBA
	RowActive     color.RGBA
	RowHover      color.RGBA
	LineBreak     color.RGBA
	Text          color.RGBA
	TextSelected  color.RGBA
	OffsetText    color.RGBA
	CommentText   color.RGBA
	Border        color.RGBA
	Track         color.RGBA
	Thumb         color.RGBA
	StatusBar     color.RGBA
	StatusText    color.RGBA
	Prompt        color.RGBA
	Tooltip       color.RGBA
	Shade         color.RGBA

	StatusHeightDp int
	PromptHeightDp int
	TrackWidthDp   int
	MarkHeightDp   int
	// Glyph metrics of the monospace face used for labels.
	GlyphW      int
	GlyphH      int
	GlyphAscent int
}

func DefaultTheme() Theme {
	return Theme{
		AppBackground:  color.RGBA{0xF3, 0xF5, 0xF8, 0xFF},
		Gutter:         color.RGBA{0xE2, 0xE7, 0xEF, 0xFF},
		Row:            color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		RowSelected:    color.RGBA{0xC9, 0xDA, 0xF2, 0xFF},
		RowActive:      color.RGBA{0x2B, 0x57, 0x9A, 0xFF},
		RowHover:       color.RGBA{0x2B, 0x57, 0x9A, 0x30},
		LineBreak:      color.RGBA{0xB2, 0xBF, 0xD0, 0xFF},
		Text:           color.RGBA{0x2A, 0x38, 0x50, 0xFF},
		TextSelected:   color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		OffsetText:     color.RGBA{0x74, 0x80, 0x96, 0xFF},
		CommentText:    color.RGBA{0x11, 0x7A, 0x37, 0xFF},
		Border:         color.RGBA{0xB2, 0xBF, 0xD0, 0xFF},
		Track:          color.RGBA{0xE7, 0xEC, 0xF4, 0xFF},
		Thumb:          color.RGBA{0x9C, 0xAA, 0xBE, 0xFF},
		StatusBar:      color.RGBA{0xEA, 0xEF, 0xF6, 0xFF},
		StatusText:     color.RGBA{0x2A, 0x38, 0x50, 0xFF},
		Prompt:         color.RGBA{0xFF, 0xF8, 0xE1, 0xFF},
		Tooltip:        color.RGBA{0xFA, 0xFB, 0xFD, 0xF0},
		Shade:          color.RGBA{0x00, 0x00, 0x00, 0x5A},
		StatusHeightDp: 24,
		PromptHeightDp: 26,
		TrackWidthDp:   14,
		MarkHeightDp:   2,
		GlyphW:         7,
		GlyphH:         13,
		GlyphAscent:    11,
	}
}
