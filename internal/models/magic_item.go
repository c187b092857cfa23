package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MagicItem is the persisted record of a saved generation. The full image can
// be orders of magnitude larger than every other field combined, so listing
// queries must never select the image column; list views use the thumbnail.
type MagicItem struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ItemJSON    string    `gorm:"type:text;not null" json:"-"`
	ImagePrompt string    `gorm:"type:text" json:"imagePrompt,omitempty"`
	ItemCard    string    `gorm:"type:text" json:"itemCard,omitempty"`
	Image       string    `gorm:"type:text" json:"image,omitempty"`
	Thumbnail   string    `gorm:"type:text" json:"thumbnail,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (MagicItem) TableName() string {
	return "magic_items"
}

// BeforeCreate assigns the opaque identifier.
func (m *MagicItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Item decodes the structured item document, backfilling optional fields.
func (m *MagicItem) Item() (ItemData, error) {
	var data ItemData
	if err := json.Unmarshal([]byte(m.ItemJSON), &data); err != nil {
		return ItemData{}, err
	}
	data.Backfill()
	return data, nil
}

// MagicItemSummary is the lightweight projection used by listings and the
// list cache: identifier, timestamp, structured item data and thumbnail.
// It never carries the full image, prompts or card text.
type MagicItemSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Item      ItemData  `json:"item"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// Summary projects the record for list views. Records whose item document no
// longer parses degrade to an empty item rather than failing the listing.
func (m *MagicItem) Summary() MagicItemSummary {
	item, err := m.Item()
	if err != nil {
		item = ItemData{}
		item.Backfill()
	}
	return MagicItemSummary{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Item:      item,
		Thumbnail: m.Thumbnail,
	}
}
