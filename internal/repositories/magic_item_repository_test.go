package repositories

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arcanum/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.MagicItem{}))
	return db
}

func seedItem(t *testing.T, repo MagicItemRepository, name string, createdAt time.Time) *models.MagicItem {
	t.Helper()
	payload, err := json.Marshal(models.ItemData{Name: name})
	assert.NoError(t, err)
	record := &models.MagicItem{
		ItemJSON:    string(payload),
		ImagePrompt: "a portrait of " + name,
		ItemCard:    "# " + name,
		Image:       "data:image/png;base64," + name + "-full-image-bytes",
		Thumbnail:   "data:image/jpeg;base64," + name + "-thumb",
		CreatedAt:   createdAt,
	}
	assert.NoError(t, repo.Create(record))
	return record
}

func TestMagicItemRepository_ListSummariesNeverCarriesImage(t *testing.T) {
	repo := NewMagicItemRepository(openTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedItem(t, repo, fmt.Sprintf("Relic %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	for _, page := range []struct{ limit, offset int }{
		{10, 0}, {2, 0}, {2, 2}, {3, 4},
	} {
		records, err := repo.ListSummaries(page.limit, page.offset)
		assert.NoError(t, err)
		assert.NotEmpty(t, records, "limit=%d offset=%d", page.limit, page.offset)
		for _, record := range records {
			assert.Empty(t, record.Image, "limit=%d offset=%d", page.limit, page.offset)
			assert.NotEmpty(t, record.ID)
			assert.NotEmpty(t, record.ItemJSON)
			assert.NotEmpty(t, record.Thumbnail)
			assert.False(t, record.CreatedAt.IsZero())
		}
	}
}

func TestMagicItemRepository_ListSummariesNewestFirst(t *testing.T) {
	repo := NewMagicItemRepository(openTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedItem(t, repo, "Oldest", base)
	seedItem(t, repo, "Middle", base.Add(time.Minute))
	newest := seedItem(t, repo, "Newest", base.Add(2*time.Minute))

	records, err := repo.ListSummaries(2, 0)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, newest.ID, records[0].ID)

	records, err = repo.ListSummaries(2, 2)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	item, err := records[0].Item()
	assert.NoError(t, err)
	assert.Equal(t, "Oldest", item.Name)
}

func TestMagicItemRepository_GetByIDReturnsFullRecord(t *testing.T) {
	repo := NewMagicItemRepository(openTestDB(t))

	seeded := seedItem(t, repo, "Sunforged Helm", time.Now().UTC())

	record, err := repo.GetByID(seeded.ID)
	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, seeded.Image, record.Image)
	assert.Equal(t, seeded.ItemCard, record.ItemCard)

	missing, err := repo.GetByID("no-such-id")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMagicItemRepository_Delete(t *testing.T) {
	repo := NewMagicItemRepository(openTestDB(t))

	seeded := seedItem(t, repo, "Fleeting Charm", time.Now().UTC())
	assert.NoError(t, repo.Delete(seeded.ID))

	record, err := repo.GetByID(seeded.ID)
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestMagicItemRepository_CreateValidation(t *testing.T) {
	repo := NewMagicItemRepository(openTestDB(t))

	assert.EqualError(t, repo.Create(nil), "item is required")
	assert.EqualError(t, repo.Create(&models.MagicItem{}), "item data is required")
}
