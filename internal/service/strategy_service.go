package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/retrieval"
)

// StrategyService populates and lists the strategy corpus.
type StrategyService struct {
	index *retrieval.Index
}

func NewStrategyService(index *retrieval.Index) *StrategyService {
	return &StrategyService{index: index}
}

// ImportStrategies embeds and stores docs. Every document is validated
// before anything is embedded.
func (s *StrategyService) ImportStrategies(ctx context.Context, docs []app.StrategyInput) (int, error) {
	if len(docs) == 0 {
		return 0, app.InputError("strategies.import", "no strategies to import")
	}
	batch := make([]domain.StrategyDocument, 0, len(docs))
	for i, d := range docs {
		title, text := strings.TrimSpace(d.Title), strings.TrimSpace(d.Text)
		if title == "" || text == "" {
			return 0, app.InputError("strategies.import", "strategy %d: title and text are required", i+1)
		}
		batch = append(batch, domain.StrategyDocument{
			Title:       title,
			Text:        text,
			Category:    strings.ToLower(strings.TrimSpace(d.Category)),
			EvidenceTag: strings.TrimSpace(d.EvidenceTag),
		})
	}
	added, err := s.index.Add(ctx, batch)
	return len(added), err
}

// ListStrategies returns the loaded corpus.
func (s *StrategyService) ListStrategies(context.Context) ([]domain.StrategyDocument, error) {
	return s.index.Documents(), nil
}

// strategyFile accepts either a top-level list or a "strategies" key.
type strategyFile struct {
	Strategies []app.StrategyInput `yaml:"strategies"`
}

// ReadStrategyFile decodes strategy documents from YAML.
func ReadStrategyFile(r io.Reader) ([]app.StrategyInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading strategy file: %w", err)
	}

	var list []app.StrategyInput
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped strategyFile
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, app.InputError("strategies.import", "invalid strategy file: %v", err)
	}
	if wrapped.Strategies == nil {
		return nil, app.InputError("strategies.import", "strategy file has no strategies")
	}
	return wrapped.Strategies, nil
}

var _ app.StrategyUseCase = (*StrategyService)(nil)
