package mocks

import (
	"arcanum/internal/models"
)

type MagicItemRepositoryMock struct {
	CreateFunc        func(item *models.MagicItem) error
	GetByIDFunc       func(id string) (*models.MagicItem, error)
	ListSummariesFunc func(limit, offset int) ([]models.MagicItem, error)
	DeleteFunc        func(id string) error
}

func (m *MagicItemRepositoryMock) Create(item *models.MagicItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(item)
	}
	return nil
}

func (m *MagicItemRepositoryMock) GetByID(id string) (*models.MagicItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MagicItemRepositoryMock) ListSummaries(limit, offset int) ([]models.MagicItem, error) {
	if m.ListSummariesFunc != nil {
		return m.ListSummariesFunc(limit, offset)
	}
	return []models.MagicItem{}, nil
}

func (m *MagicItemRepositoryMock) Delete(id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}
