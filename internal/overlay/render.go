package overlay

import (
	"math"
	"strconv"

	"github.com/shoppable-video/backend/internal/carousel"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/internal/schedule"
)

const (
	// CarouselClass is set on every carousel root.
	CarouselClass = "shoppable-carousel"

	anchorOffset = "16px"
	contentMin   = 100.0
)

// Render builds the carousel for product p under cfg. scrollIndex is only read when cfg.EnableScroll is set.
func Render(p *models.Product, cfg carousel.Config, scrollIndex int) *Node {
	root := &Node{
		Kind:  KindBox,
		Role:  RoleCarousel,
		Class: rootClasses(cfg),
		Style: rootStyle(cfg),
	}

	thumb := thumbnail(p, cfg)
	info := box(RoleInfo, Style{
		"flex":           "1",
		"min-width":      "0",
		"display":        "flex",
		"flex-direction": "column",
		"gap":            "4px",
	})

	if cfg.EnableScroll {
		if slot := scrollSlot(p, cfg, scrollIndex); slot != nil {
			info.append(slot)
		}
	} else {
		if cfg.ShowTitle {
			info.append(title(p, cfg))
		}
		if cfg.ShowPrice {
			info.append(price(p, cfg))
		}
	}
	if cfg.ShowDescription && p.Description != nil && *p.Description != "" {
		info.append(description(p, cfg))
	}

	var button *Node
	if cfg.ShowButton && !cfg.EnableScroll {
		button = ctaButton(p, cfg)
	}
	layout(root, thumb, info, button, cfg)

	action := &Action{Type: ActionProductClick, ProductID: p.ID, URL: p.URL}
	if button != nil {
		button.Action = action
		root.Style["cursor"] = "default"
	} else {
		root.Action = action
		root.Style["cursor"] = "pointer"
	}
	return root
}

// MaxWidth is the effective carousel max width: the configured width, floored so the thumbnail never clips.
func MaxWidth(cfg carousel.Config) float64 {
	floor := cfg.ThumbnailSize + 2*cfg.CarouselPadding
	if cfg.HasContent() {
		floor += cfg.ThumbnailContentGap + contentMin
	}
	return math.Max(cfg.CarouselWidth, floor)
}

// ThumbnailGeometry returns width, height and border radius for the configured shape.
func ThumbnailGeometry(cfg carousel.Config) (width, height float64, radius string) {
	size := cfg.ThumbnailSize
	switch cfg.ThumbnailShape {
	case carousel.ShapeCircle:
		return size, size, "50%"
	case carousel.ShapePortrait:
		return size * 0.75, size, px(cfg.CornerRadius)
	default:
		return size, size, px(cfg.CornerRadius)
	}
}

// PositionStyle maps an anchor to absolute offsets inside the player box.
func PositionStyle(pos carousel.Position) Style {
	switch pos {
	case carousel.PositionTopCenter:
		return Style{"top": anchorOffset, "left": "50%", "transform": "translateX(-50%)"}
	case carousel.PositionTopLeft:
		return Style{"top": anchorOffset, "left": anchorOffset}
	case carousel.PositionSideRight:
		return Style{"right": anchorOffset, "top": "50%", "transform": "translateY(-50%)"}
	case carousel.PositionSideLeft:
		return Style{"left": anchorOffset, "top": "50%", "transform": "translateY(-50%)"}
	case carousel.PositionBottomRight:
		return Style{"bottom": anchorOffset, "right": anchorOffset}
	case carousel.PositionBottomCenter, carousel.PositionEndOfVideo:
		return Style{"bottom": anchorOffset, "left": "50%", "transform": "translateX(-50%)"}
	case carousel.PositionBottomLeft:
		return Style{"bottom": anchorOffset, "left": anchorOffset}
	default:
		return Style{"top": anchorOffset, "right": anchorOffset}
	}
}

// FontFamilyCSS returns the CSS font-family for a named editor font.
func FontFamilyCSS(f carousel.FontFamily) string {
	switch f {
	case carousel.FamilyLeagueSpartan:
		return "League Spartan, sans-serif"
	case carousel.FamilyGlacialIndifference:
		return "Glacial Indifference, sans-serif"
	case carousel.FamilyLacquer:
		return "Lacquer, cursive"
	default:
		return "inherit"
	}
}

// fontFace returns font-weight and font-style; base is the weight used when the style is not bold.
func fontFace(style carousel.FontStyle, base string) (weight, slant string) {
	switch style {
	case carousel.FontBold:
		return "bold", "normal"
	case carousel.FontItalic:
		return base, "italic"
	case carousel.FontBoldItalic:
		return "bold", "italic"
	default:
		return base, "normal"
	}
}

func rootClasses(cfg carousel.Config) []string {
	classes := []string{CarouselClass}
	if cfg.Animation != "" && cfg.Animation != carousel.AnimationNone {
		classes = append(classes, "animation-"+string(cfg.Animation))
	}
	return classes
}

func rootStyle(cfg carousel.Config) Style {
	s := Style{
		"position":       "absolute",
		"padding":        px(cfg.CarouselPadding),
		"max-width":      px(MaxWidth(cfg)),
		"border-radius":  px(cfg.CornerRadius),
		"pointer-events": "auto",
		"z-index":        "1000",
	}
	if cfg.TransparentBackground {
		s["background-color"] = "transparent"
		s["backdrop-filter"] = "none"
	} else {
		s["background-color"] = "rgba(255, 255, 255, 0.95)"
		s["backdrop-filter"] = "blur(10px)"
	}
	if cfg.ShowBorder {
		s["box-shadow"] = "0 4px 12px rgba(0,0,0,0.15)"
		s["border"] = "1px solid rgba(0,0,0,0.1)"
	} else {
		s["box-shadow"] = "none"
		s["border"] = "none"
	}
	for k, v := range PositionStyle(cfg.Position) {
		s[k] = v
	}
	return s
}

func thumbnail(p *models.Product, cfg carousel.Config) *Node {
	w, h, radius := ThumbnailGeometry(cfg)
	return &Node{
		Kind: KindImage,
		Role: RoleThumbnail,
		Src:  p.ThumbnailURL,
		Alt:  p.Title,
		Style: Style{
			"object-fit":    "cover",
			"width":         px(w),
			"height":        px(h),
			"border-radius": radius,
		},
	}
}

func textNode(role Role, text string, style Style) *Node {
	return &Node{Kind: KindText, Role: role, Text: text, Style: style}
}

func title(p *models.Product, cfg carousel.Config) *Node {
	weight, slant := fontFace(cfg.TitleFontStyle, "600")
	return textNode(RoleTitle, p.Title, Style{
		"font-size":   "14px",
		"font-weight": weight,
		"font-style":  slant,
		"font-family": FontFamilyCSS(cfg.TitleFontFamily),
		"margin":      "0",
		"line-height": "1.4",
		"color":       "#000",
	})
}

func price(p *models.Product, cfg carousel.Config) *Node {
	weight, slant := fontFace(cfg.PriceFontStyle, "600")
	return textNode(RolePrice, p.Price, Style{
		"font-size":   "14px",
		"font-weight": weight,
		"font-style":  slant,
		"font-family": FontFamilyCSS(cfg.PriceFontFamily),
		"margin":      "0",
		"color":       "#6366f1",
	})
}

func description(p *models.Product, cfg carousel.Config) *Node {
	weight, slant := fontFace(cfg.DescriptionFontStyle, "400")
	return textNode(RoleDescription, *p.Description, Style{
		"font-size":   "12px",
		"font-weight": weight,
		"font-style":  slant,
		"font-family": FontFamilyCSS(cfg.DescriptionFontFamily),
		"margin":      "0",
		"line-height": "1.4",
		"color":       "#666",
	})
}

func buttonFace(cfg carousel.Config) (weight, slant string) {
	base := cfg.ButtonFontWeight
	if base == "" {
		base = "400"
	}
	return fontFace(cfg.ButtonFontStyle, base)
}

func ctaButton(p *models.Product, cfg carousel.Config) *Node {
	weight, slant := buttonFace(cfg)
	return &Node{
		Kind: KindButton,
		Role: RoleButton,
		Text: cfg.ButtonText,
		Href: p.URL,
		Style: Style{
			"display":          "inline-block",
			"padding":          "6px 12px",
			"background-color": cfg.ButtonBackgroundColor,
			"color":            cfg.ButtonTextColor,
			"font-size":        px(cfg.ButtonFontSize),
			"font-weight":      weight,
			"font-style":       slant,
			"font-family":      FontFamilyCSS(cfg.ButtonFontFamily),
			"border-radius":    px(cfg.ButtonBorderRadius),
			"text-decoration":  "none",
			"cursor":           "pointer",
			"border":           "none",
			"white-space":      "nowrap",
		},
	}
}

// scrollSlot renders the single field selected by index, or nil when that field is disabled.
func scrollSlot(p *models.Product, cfg carousel.Config, index int) *Node {
	var field *Node
	switch index {
	case schedule.ScrollTitle:
		if cfg.ShowTitle {
			field = title(p, cfg)
		}
	case schedule.ScrollPrice:
		if cfg.ShowPrice {
			field = price(p, cfg)
		}
	case schedule.ScrollButton:
		if cfg.ShowButton {
			weight, slant := buttonFace(cfg)
			field = textNode(RoleButtonText, cfg.ButtonText, Style{
				"font-size":   px(cfg.ButtonFontSize),
				"font-weight": weight,
				"font-style":  slant,
				"font-family": FontFamilyCSS(cfg.ButtonFontFamily),
				"margin":      "0",
				"color":       "#000",
			})
		}
	}
	if field == nil {
		return nil
	}
	slot := box(RoleScrollSlot, Style{"overflow": "hidden"}, field)
	slot.Class = []string{"scroll-text"}
	if cfg.ScrollTextAnimation != "" && cfg.ScrollTextAnimation != carousel.TextAnimationNone {
		slot.Class = append(slot.Class, "scroll-text-"+string(cfg.ScrollTextAnimation))
	}
	return slot
}

func layout(root, thumb, info, button *Node, cfg carousel.Config) {
	thumbGap := px(cfg.ThumbnailContentGap)
	buttonGap := px(cfg.ContentButtonGap)
	content := func(extra Style) *Node {
		s := Style{"display": "flex", "gap": thumbGap}
		for k, v := range extra {
			s[k] = v
		}
		return box(RoleContent, s, thumb, info)
	}

	switch cfg.ButtonPosition {
	case carousel.ButtonRight, carousel.ButtonLeft:
		row := content(nil)
		if button == nil {
			root.append(row)
			return
		}
		button.Style["align-self"] = "center"
		wrapper := box(RoleLayout, Style{"display": "flex", "align-items": "center", "gap": buttonGap})
		if cfg.ButtonPosition == carousel.ButtonLeft {
			wrapper.append(button, row)
		} else {
			wrapper.append(row, button)
		}
		root.append(wrapper)
	case carousel.ButtonTop:
		if button != nil {
			button.Style["display"] = "block"
			button.Style["width"] = "100%"
			button.Style["text-align"] = "center"
			button.Style["margin-bottom"] = buttonGap
			root.append(button)
		}
		root.append(content(nil))
	default:
		column := box(RoleLayout, Style{"display": "flex", "flex-direction": "column", "gap": buttonGap})
		column.append(content(Style{"align-items": "flex-start"}))
		if button != nil {
			button.Style["width"] = "100%"
			button.Style["text-align"] = "center"
			column.append(button)
		}
		root.append(column)
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
