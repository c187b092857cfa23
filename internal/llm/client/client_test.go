package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arcanum/internal/models"
)

const fixtureJSON = `{
  "item": {
    "name": "Emberfall Amulet",
    "type": "Amulet",
    "rarity": "Rare",
    "description": "A pendant of cooling embers.",
    "mechanics": {"requiresAttunement": true, "effects": ["resist fire"]},
    "priceGold": 450
  },
  "imagePrompt": "an amulet glowing with embers",
  "itemCard": "# Emberfall Amulet"
}`

func TestParseGeneratedContent_PlainJSON(t *testing.T) {
	content, err := ParseGeneratedContent(fixtureJSON)
	assert.NoError(t, err)
	assert.Equal(t, "Emberfall Amulet", content.Item.Name)
	assert.Equal(t, "an amulet glowing with embers", content.ImagePrompt)
	assert.Equal(t, models.RarityRare, content.Item.Rarity)
}

func TestParseGeneratedContent_FencedJSON(t *testing.T) {
	raw := "Here is your item:\n```json\n" + fixtureJSON + "\n```\nEnjoy!"
	content, err := ParseGeneratedContent(raw)
	assert.NoError(t, err)
	assert.Equal(t, "Emberfall Amulet", content.Item.Name)
}

func TestParseGeneratedContent_BackfillsOptionalFields(t *testing.T) {
	raw := `{"item":{"name":"Plain Ring","type":"Ring","rarity":"Common","description":"d","priceGold":-3},"imagePrompt":"p","itemCard":"c"}`
	content, err := ParseGeneratedContent(raw)
	assert.NoError(t, err)
	assert.NotNil(t, content.Item.Mechanics.Effects)
	assert.Equal(t, models.ThemeNone, content.Item.Theme)
	assert.Zero(t, content.Item.PriceGold)
}

func TestParseGeneratedContent_Rejections(t *testing.T) {
	_, err := ParseGeneratedContent("no json here at all")
	assert.ErrorContains(t, err, "no JSON object")

	_, err = ParseGeneratedContent(`{"item":{"name":""},"imagePrompt":"p","itemCard":"c"}`)
	assert.ErrorContains(t, err, "missing item name")

	_, err = ParseGeneratedContent(`{"item":{"name":"X"},"imagePrompt":"","itemCard":"c"}`)
	assert.ErrorContains(t, err, "missing image prompt")

	_, err = ParseGeneratedContent(`{"item":{"name":"X"},"imagePrompt":"p","itemCard":" "}`)
	assert.ErrorContains(t, err, "missing item card")
}

func TestBuildUserPrompt(t *testing.T) {
	settings := models.GenerationSettings{
		Rarity:          models.RarityLegendary,
		ItemType:        "Staff",
		Theme:           "Storm",
		VisualStyle:     "Dark Fantasy",
		PowerBand:       models.PowerMajor,
		IncludeCurse:    true,
		IncludePlotHook: false,
		LoreSeed:        "once held by a sky titan",
	}

	prompt := BuildUserPrompt(settings)
	assert.Contains(t, prompt, "Legendary Staff")
	assert.Contains(t, prompt, "Theme: Storm.")
	assert.Contains(t, prompt, "Dark Fantasy")
	assert.Contains(t, prompt, "fill curseText")
	assert.Contains(t, prompt, "leave plotHook empty")
	assert.Contains(t, prompt, "once held by a sky titan")
}

func TestBuildUserPrompt_OmitsNoneTheme(t *testing.T) {
	settings := models.GenerationSettings{
		Rarity:      models.RarityCommon,
		ItemType:    "Boots",
		Theme:       models.ThemeNone,
		VisualStyle: "Storybook",
		PowerBand:   models.PowerMinor,
	}
	prompt := BuildUserPrompt(settings)
	assert.NotContains(t, prompt, "Theme:")
	assert.Contains(t, prompt, "No curse")
}
