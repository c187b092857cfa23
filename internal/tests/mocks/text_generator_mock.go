package mocks

import (
	"context"

	"arcanum/internal/models"
)

type TextGeneratorMock struct {
	GenerateItemFunc func(ctx context.Context, settings models.GenerationSettings) (*models.GeneratedContent, error)
}

func (m *TextGeneratorMock) GenerateItem(ctx context.Context, settings models.GenerationSettings) (*models.GeneratedContent, error) {
	if m.GenerateItemFunc != nil {
		return m.GenerateItemFunc(ctx, settings)
	}
	return &models.GeneratedContent{}, nil
}
