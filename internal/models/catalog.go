package models

// Rarity is the scarcity tier of a generated item.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityVeryRare  Rarity = "Very Rare"
	RarityLegendary Rarity = "Legendary"
	RarityArtifact  Rarity = "Artifact"
)

// PowerBand is a coarse impact tier controlling how strong generated effects
// should be.
type PowerBand string

const (
	PowerMinor    PowerBand = "Minor"
	PowerModerate PowerBand = "Moderate"
	PowerMajor    PowerBand = "Major"
	PowerMythic   PowerBand = "Mythic"
)

// ThemeNone is the explicit "no theme" choice.
const ThemeNone = "none"

var Rarities = []Rarity{
	RarityCommon, RarityUncommon, RarityRare, RarityVeryRare, RarityLegendary, RarityArtifact,
}

var PowerBands = []PowerBand{
	PowerMinor, PowerModerate, PowerMajor, PowerMythic,
}

var ItemTypes = []string{
	"Weapon", "Armor", "Shield", "Wand", "Staff", "Ring",
	"Amulet", "Cloak", "Boots", "Helm", "Gauntlets", "Belt",
	"Tome", "Orb", "Potion", "Instrument", "Relic",
}

var Themes = []string{
	ThemeNone, "Fire", "Ice", "Storm", "Shadow", "Nature",
	"Celestial", "Infernal", "Arcane", "Blood", "Clockwork", "Oceanic",
}

var VisualStyles = []string{
	"Oil Painting", "Watercolor", "Dark Fantasy", "Ethereal",
	"Runic Engraving", "Stained Glass", "Storybook", "Gilded Manuscript",
}

// Catalog bundles the fixed option lists served to the generation form.
type Catalog struct {
	ItemTypes    []string    `json:"itemTypes"`
	Rarities     []Rarity    `json:"rarities"`
	Themes       []string    `json:"themes"`
	VisualStyles []string    `json:"visualStyles"`
	PowerBands   []PowerBand `json:"powerBands"`
}

// DefaultCatalog returns the fixed option catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		ItemTypes:    ItemTypes,
		Rarities:     Rarities,
		Themes:       Themes,
		VisualStyles: VisualStyles,
		PowerBands:   PowerBands,
	}
}

func validRarity(r Rarity) bool {
	for _, known := range Rarities {
		if known == r {
			return true
		}
	}
	return false
}

func validPowerBand(p PowerBand) bool {
	for _, known := range PowerBands {
		if known == p {
			return true
		}
	}
	return false
}

func inCatalog(list []string, value string) bool {
	for _, known := range list {
		if known == value {
			return true
		}
	}
	return false
}
