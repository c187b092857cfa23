package models

import (
	"fmt"
	"strings"
)

const maxLoreSeedLength = 500

// GenerationSettings carries the user-selected parameters for one generation
// request. Values are validated against the fixed catalogs before any
// provider call is made.
type GenerationSettings struct {
	Rarity          Rarity    `json:"rarity"`
	ItemType        string    `json:"itemType"`
	Theme           string    `json:"theme"`
	VisualStyle     string    `json:"visualStyle"`
	PowerBand       PowerBand `json:"powerBand"`
	IncludeCurse    bool      `json:"includeCurse"`
	IncludePlotHook bool      `json:"includePlotHook"`
	LoreSeed        string    `json:"loreSeed,omitempty"`
}

// Validate checks every field against the catalogs and bounds the lore seed.
func (s *GenerationSettings) Validate() error {
	if !validRarity(s.Rarity) {
		return fmt.Errorf("unknown rarity %q", s.Rarity)
	}
	if !inCatalog(ItemTypes, s.ItemType) {
		return fmt.Errorf("unknown item type %q", s.ItemType)
	}
	if s.Theme == "" {
		s.Theme = ThemeNone
	}
	if !inCatalog(Themes, s.Theme) {
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if !inCatalog(VisualStyles, s.VisualStyle) {
		return fmt.Errorf("unknown visual style %q", s.VisualStyle)
	}
	if !validPowerBand(s.PowerBand) {
		return fmt.Errorf("unknown power band %q", s.PowerBand)
	}
	s.LoreSeed = strings.TrimSpace(s.LoreSeed)
	if len(s.LoreSeed) > maxLoreSeedLength {
		return fmt.Errorf("lore seed exceeds %d characters", maxLoreSeedLength)
	}
	return nil
}

// ItemMechanics describes how the item behaves in play.
type ItemMechanics struct {
	RequiresAttunement bool     `json:"requiresAttunement"`
	Effects            []string `json:"effects"`
	Activation         string   `json:"activation,omitempty"`
	Scaling            string   `json:"scaling,omitempty"`
}

// ItemData holds the structured facts of a generated artifact. It is produced
// once by the text-generation step and immutable afterwards, apart from
// Backfill filling defaults for optional fields older records may lack.
type ItemData struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Rarity      Rarity        `json:"rarity"`
	Style       string        `json:"style,omitempty"`
	Theme       string        `json:"theme,omitempty"`
	PowerBand   PowerBand     `json:"powerBand,omitempty"`
	Description string        `json:"description"`
	Mechanics   ItemMechanics `json:"mechanics"`
	CurseText   string        `json:"curseText,omitempty"`
	PlotHook    string        `json:"plotHook,omitempty"`
	PriceGold   float64       `json:"priceGold"`
}

// Backfill fills defaults for optional fields so callers never see nil
// slices or negative prices regardless of what the provider or an older
// stored record supplied.
func (d *ItemData) Backfill() {
	if d.Mechanics.Effects == nil {
		d.Mechanics.Effects = []string{}
	}
	if d.Theme == "" {
		d.Theme = ThemeNone
	}
	if d.PriceGold < 0 {
		d.PriceGold = 0
	}
}

// GeneratedContent is the atomic payload of one text-generation call.
type GeneratedContent struct {
	Item        ItemData `json:"item"`
	ImagePrompt string   `json:"imagePrompt"`
	ItemCard    string   `json:"itemCard"`
}

// MagicItemResult is generated content plus the optional illustration, a
// base64 data URL attached by a second independent call. The image field may
// be absent while generation is in progress or when the image step failed.
type MagicItemResult struct {
	GeneratedContent
	Image string `json:"image,omitempty"`
}
