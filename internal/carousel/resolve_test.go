package carousel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_EmptyIsDefaults(t *testing.T) {
	assert.Equal(t, Defaults(), Resolve(Stored{}))
}

func TestResolve_SingleOverride(t *testing.T) {
	got := Resolve(Stored{ShowTitle: ptr(true)})

	want := Defaults()
	want.ShowTitle = true
	assert.Equal(t, want, got)
}

func TestResolve_ExplicitZeroIsHonoured(t *testing.T) {
	got := Resolve(Stored{CarouselPadding: ptr(0.0), ShowBorder: ptr(false), ButtonText: ptr("")})

	assert.Equal(t, 0.0, got.CarouselPadding)
	assert.False(t, got.ShowBorder)
	assert.Equal(t, "", got.ButtonText)
	assert.Equal(t, 12.0, got.ThumbnailContentGap)
}

func TestResolve_OutOfRangePassesThrough(t *testing.T) {
	got := Resolve(Stored{ThumbnailSize: ptr(-10.0), Position: ptr(Position("nowhere"))})

	assert.Equal(t, -10.0, got.ThumbnailSize)
	assert.Equal(t, Position("nowhere"), got.Position)
}

func TestResolve_FromJSON(t *testing.T) {
	raw := `{"position":"bottom-left","thumbnailShape":"circle","showPrice":true,"buttonText":null,"enableScroll":true}`

	var s Stored
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	got := Resolve(s)

	assert.Equal(t, PositionBottomLeft, got.Position)
	assert.Equal(t, ShapeCircle, got.ThumbnailShape)
	assert.True(t, got.ShowPrice)
	assert.True(t, got.EnableScroll)
	assert.Equal(t, "Shop Now", got.ButtonText)
	assert.Equal(t, 64.0, got.ThumbnailSize)
}

func TestConfig_HasContent(t *testing.T) {
	c := Defaults()
	assert.False(t, c.HasContent())

	c.ShowDescription = true
	assert.True(t, c.HasContent())
}
