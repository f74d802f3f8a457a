package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Custom theme color names
const (
	ColorNameSurface       fyne.ThemeColorName = "surface"
	ColorNameTextSecondary fyne.ThemeColorName = "textSecondary"

	ColorNameStagePending fyne.ThemeColorName = "stagePending"
	ColorNameStageActive  fyne.ThemeColorName = "stageActive"
	ColorNameStageDone    fyne.ThemeColorName = "stageDone"
	ColorNameStageFailed  fyne.ThemeColorName = "stageFailed"
)

// TranslatorTheme is the dark theme of the translator window.
type TranslatorTheme struct{}

var _ fyne.Theme = (*TranslatorTheme)(nil)

func (t *TranslatorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return ColorBackground
	case theme.ColorNameForeground:
		return ColorTextPrimary
	case theme.ColorNamePrimary, theme.ColorNameButton:
		return ColorPrimary

	case theme.ColorNameInputBackground:
		return ColorInputBg
	case theme.ColorNameInputBorder:
		return ColorDivider
	case theme.ColorNamePlaceHolder:
		return ColorTextHint
	case theme.ColorNameFocus:
		return ColorFocusBorder

	case theme.ColorNameSelection:
		return WithAlpha(ColorPrimary, 80)
	case theme.ColorNameHover:
		return ColorHover
	case theme.ColorNamePressed:
		return ColorPressed

	case theme.ColorNameDisabled:
		return ColorTextDisabled
	case theme.ColorNameDisabledButton:
		return ColorDisabledBg
	case theme.ColorNameScrollBar:
		return ColorScrollbar
	case theme.ColorNameSeparator:
		return ColorDivider

	case theme.ColorNameError:
		return ColorError
	case theme.ColorNameSuccess:
		return ColorSuccess
	case theme.ColorNameWarning:
		return ColorWarning

	case theme.ColorNameOverlayBackground:
		return ColorOverlay
	case theme.ColorNameMenuBackground, theme.ColorNameHeaderBackground:
		return ColorSurface
	case theme.ColorNameHyperlink:
		return ColorSecondary

	case ColorNameSurface:
		return ColorSurfaceVariant
	case ColorNameTextSecondary:
		return ColorTextSecondary
	case ColorNameStagePending:
		return ColorPending
	case ColorNameStageActive:
		return ColorActive
	case ColorNameStageDone:
		return ColorSuccess
	case ColorNameStageFailed:
		return ColorError

	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *TranslatorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *TranslatorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *TranslatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 15
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameCaptionText:
		return 12
	case theme.SizeNameInputRadius:
		return 6
	}
	return theme.DefaultTheme().Size(name)
}
