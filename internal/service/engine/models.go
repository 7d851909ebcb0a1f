package engine

import (
	"context"
	"fmt"
)

// Model describes one model installed on the backend.
type Model struct {
	Name          string `json:"name"`
	ParameterSize string `json:"parameterSize,omitempty"`
	Quantization  string `json:"quantization,omitempty"`
	Default       bool   `json:"default"`
}

// ListModels returns the models installed on the backend, flagging the
// configured default.
func (s *Service) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := s.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, Model{
			Name:          m.Name,
			ParameterSize: m.Details.ParameterSize,
			Quantization:  m.Details.QuantizationLevel,
			Default:       m.Name == s.cfg.Model,
		})
	}
	return models, nil
}
