// Package carousel holds the overlay presentation config and merges stored overrides onto defaults.
package carousel

// Position is one of the nine overlay anchors.
type Position string

const (
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionTopLeft      Position = "top-left"
	PositionSideRight    Position = "side-right"
	PositionSideLeft     Position = "side-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionEndOfVideo   Position = "end-of-video"
)

// Positions lists every anchor in editor order.
var Positions = []Position{
	PositionTopRight, PositionTopCenter, PositionTopLeft,
	PositionSideRight, PositionSideLeft,
	PositionBottomRight, PositionBottomCenter, PositionBottomLeft,
	PositionEndOfVideo,
}

// ThumbnailShape controls thumbnail geometry.
type ThumbnailShape string

const (
	ShapeSquare   ThumbnailShape = "square"
	ShapeCircle   ThumbnailShape = "circle"
	ShapePortrait ThumbnailShape = "portrait"
)

// Animation is the idle animation applied to the whole carousel.
type Animation string

const (
	AnimationNone  Animation = "none"
	AnimationHover Animation = "hover"
	AnimationFloat Animation = "float"
	AnimationPulse Animation = "pulse"
)

// FontStyle is the weight/slant combination for a text field.
type FontStyle string

const (
	FontNormal     FontStyle = "normal"
	FontBold       FontStyle = "bold"
	FontItalic     FontStyle = "italic"
	FontBoldItalic FontStyle = "bold-italic"
)

// FontFamily is a named font offered by the editor.
type FontFamily string

const (
	FamilyDefault             FontFamily = "default"
	FamilyLeagueSpartan       FontFamily = "league-spartan"
	FamilyGlacialIndifference FontFamily = "glacial-indifference"
	FamilyLacquer             FontFamily = "lacquer"
)

// ButtonPosition places the call-to-action relative to the product content.
type ButtonPosition string

const (
	ButtonBelow ButtonPosition = "below"
	ButtonLeft  ButtonPosition = "left"
	ButtonRight ButtonPosition = "right"
	ButtonTop   ButtonPosition = "top"
)

// TextAnimation is the transition used when scroll mode swaps the visible field.
type TextAnimation string

const (
	TextAnimationNone  TextAnimation = "none"
	TextAnimationFade  TextAnimation = "fade"
	TextAnimationSlide TextAnimation = "slide"
)

// Config is a fully resolved carousel configuration. Components only ever read this type.
type Config struct {
	Position              Position       `json:"position"`
	ThumbnailShape        ThumbnailShape `json:"thumbnailShape"`
	ThumbnailSize         float64        `json:"thumbnailSize"`
	CarouselWidth         float64        `json:"carouselWidth"`
	CornerRadius          float64        `json:"cornerRadius"`
	TransparentBackground bool           `json:"transparentBackground"`
	ShowBorder            bool           `json:"showBorder"`
	Animation             Animation      `json:"animation"`

	ShowTitle             bool       `json:"showTitle"`
	TitleFontStyle        FontStyle  `json:"titleFontStyle"`
	TitleFontFamily       FontFamily `json:"titleFontFamily"`
	ShowPrice             bool       `json:"showPrice"`
	PriceFontStyle        FontStyle  `json:"priceFontStyle"`
	PriceFontFamily       FontFamily `json:"priceFontFamily"`
	ShowDescription       bool       `json:"showDescription"`
	DescriptionFontStyle  FontStyle  `json:"descriptionFontStyle"`
	DescriptionFontFamily FontFamily `json:"descriptionFontFamily"`

	ShowButton            bool           `json:"showButton"`
	ButtonText            string         `json:"buttonText"`
	ButtonBackgroundColor string         `json:"buttonBackgroundColor"`
	ButtonTextColor       string         `json:"buttonTextColor"`
	ButtonFontSize        float64        `json:"buttonFontSize"`
	ButtonFontWeight      string         `json:"buttonFontWeight"`
	ButtonFontStyle       FontStyle      `json:"buttonFontStyle"`
	ButtonFontFamily      FontFamily     `json:"buttonFontFamily"`
	ButtonBorderRadius    float64        `json:"buttonBorderRadius"`
	ButtonPosition        ButtonPosition `json:"buttonPosition"`

	CarouselPadding     float64 `json:"carouselPadding"`
	ThumbnailContentGap float64 `json:"thumbnailContentGap"`
	ContentButtonGap    float64 `json:"contentButtonGap"`

	EnableScroll        bool          `json:"enableScroll"`
	ScrollTextAnimation TextAnimation `json:"scrollTextAnimation"`
}

// Defaults returns the baseline every stored config is merged onto.
func Defaults() Config {
	return Config{
		Position:              PositionTopRight,
		ThumbnailShape:        ShapeSquare,
		ThumbnailSize:         64,
		CarouselWidth:         250,
		CornerRadius:          0,
		TransparentBackground: false,
		ShowBorder:            true,
		Animation:             AnimationNone,

		TitleFontStyle:        FontNormal,
		TitleFontFamily:       FamilyDefault,
		PriceFontStyle:        FontNormal,
		PriceFontFamily:       FamilyDefault,
		DescriptionFontStyle:  FontNormal,
		DescriptionFontFamily: FamilyDefault,

		ButtonText:            "Shop Now",
		ButtonBackgroundColor: "#000000",
		ButtonTextColor:       "#FFFFFF",
		ButtonFontSize:        14,
		ButtonFontWeight:      "500",
		ButtonFontStyle:       FontNormal,
		ButtonFontFamily:      FamilyDefault,
		ButtonBorderRadius:    4,
		ButtonPosition:        ButtonBelow,

		CarouselPadding:     12,
		ThumbnailContentGap: 12,
		ContentButtonGap:    12,

		EnableScroll:        false,
		ScrollTextAnimation: TextAnimationFade,
	}
}

// HasContent reports whether any field besides the thumbnail is shown.
func (c Config) HasContent() bool {
	return c.ShowTitle || c.ShowPrice || c.ShowDescription || c.ShowButton
}
