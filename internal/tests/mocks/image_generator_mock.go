package mocks

import (
	"context"
)

type ImageGeneratorMock struct {
	GenerateImageFunc func(ctx context.Context, prompt, style string) (string, error)
}

func (m *ImageGeneratorMock) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt, style)
	}
	return "", nil
}
