package carousel

// Stored is the persisted, partial form of Config. A nil field (absent or JSON null) falls back to the default.
type Stored struct {
	Position              *Position       `json:"position,omitempty"`
	ThumbnailShape        *ThumbnailShape `json:"thumbnailShape,omitempty"`
	ThumbnailSize         *float64        `json:"thumbnailSize,omitempty"`
	CarouselWidth         *float64        `json:"carouselWidth,omitempty"`
	CornerRadius          *float64        `json:"cornerRadius,omitempty"`
	TransparentBackground *bool           `json:"transparentBackground,omitempty"`
	ShowBorder            *bool           `json:"showBorder,omitempty"`
	Animation             *Animation      `json:"animation,omitempty"`

	ShowTitle             *bool       `json:"showTitle,omitempty"`
	TitleFontStyle        *FontStyle  `json:"titleFontStyle,omitempty"`
	TitleFontFamily       *FontFamily `json:"titleFontFamily,omitempty"`
	ShowPrice             *bool       `json:"showPrice,omitempty"`
	PriceFontStyle        *FontStyle  `json:"priceFontStyle,omitempty"`
	PriceFontFamily       *FontFamily `json:"priceFontFamily,omitempty"`
	ShowDescription       *bool       `json:"showDescription,omitempty"`
	DescriptionFontStyle  *FontStyle  `json:"descriptionFontStyle,omitempty"`
	DescriptionFontFamily *FontFamily `json:"descriptionFontFamily,omitempty"`

	ShowButton            *bool           `json:"showButton,omitempty"`
	ButtonText            *string         `json:"buttonText,omitempty"`
	ButtonBackgroundColor *string         `json:"buttonBackgroundColor,omitempty"`
	ButtonTextColor       *string         `json:"buttonTextColor,omitempty"`
	ButtonFontSize        *float64        `json:"buttonFontSize,omitempty"`
	ButtonFontWeight      *string         `json:"buttonFontWeight,omitempty"`
	ButtonFontStyle       *FontStyle      `json:"buttonFontStyle,omitempty"`
	ButtonFontFamily      *FontFamily     `json:"buttonFontFamily,omitempty"`
	ButtonBorderRadius    *float64        `json:"buttonBorderRadius,omitempty"`
	ButtonPosition        *ButtonPosition `json:"buttonPosition,omitempty"`

	CarouselPadding     *float64 `json:"carouselPadding,omitempty"`
	ThumbnailContentGap *float64 `json:"thumbnailContentGap,omitempty"`
	ContentButtonGap    *float64 `json:"contentButtonGap,omitempty"`

	EnableScroll        *bool          `json:"enableScroll,omitempty"`
	ScrollTextAnimation *TextAnimation `json:"scrollTextAnimation,omitempty"`
}

// Resolve merges stored overrides onto Defaults. Values are not range checked.
func Resolve(s Stored) Config {
	c := Defaults()

	set(&c.Position, s.Position)
	set(&c.ThumbnailShape, s.ThumbnailShape)
	set(&c.ThumbnailSize, s.ThumbnailSize)
	set(&c.CarouselWidth, s.CarouselWidth)
	set(&c.CornerRadius, s.CornerRadius)
	set(&c.TransparentBackground, s.TransparentBackground)
	set(&c.ShowBorder, s.ShowBorder)
	set(&c.Animation, s.Animation)

	set(&c.ShowTitle, s.ShowTitle)
	set(&c.TitleFontStyle, s.TitleFontStyle)
	set(&c.TitleFontFamily, s.TitleFontFamily)
	set(&c.ShowPrice, s.ShowPrice)
	set(&c.PriceFontStyle, s.PriceFontStyle)
	set(&c.PriceFontFamily, s.PriceFontFamily)
	set(&c.ShowDescription, s.ShowDescription)
	set(&c.DescriptionFontStyle, s.DescriptionFontStyle)
	set(&c.DescriptionFontFamily, s.DescriptionFontFamily)

	set(&c.ShowButton, s.ShowButton)
	set(&c.ButtonText, s.ButtonText)
	set(&c.ButtonBackgroundColor, s.ButtonBackgroundColor)
	set(&c.ButtonTextColor, s.ButtonTextColor)
	set(&c.ButtonFontSize, s.ButtonFontSize)
	set(&c.ButtonFontWeight, s.ButtonFontWeight)
	set(&c.ButtonFontStyle, s.ButtonFontStyle)
	set(&c.ButtonFontFamily, s.ButtonFontFamily)
	set(&c.ButtonBorderRadius, s.ButtonBorderRadius)
	set(&c.ButtonPosition, s.ButtonPosition)

	set(&c.CarouselPadding, s.CarouselPadding)
	set(&c.ThumbnailContentGap, s.ThumbnailContentGap)
	set(&c.ContentButtonGap, s.ContentButtonGap)

	set(&c.EnableScroll, s.EnableScroll)
	set(&c.ScrollTextAnimation, s.ScrollTextAnimation)

	return c
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
