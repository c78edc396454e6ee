package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Polarity string  `json:"polarity"`
	Score    float64 `json:"score"`
}

type testItem struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func TestExtractJSON_CleanJSON(t *testing.T) {
	raw := `{"polarity":"negative","score":-0.6}`
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "negative", result.Polarity)
	assert.Equal(t, -0.6, result.Score)
}

func TestExtractJSON_FencedJSON(t *testing.T) {
	raw := "```json\n{\"polarity\":\"neutral\",\"score\":0.1}\n```"
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "neutral", result.Polarity)
}

func TestExtractJSON_SurroundingText(t *testing.T) {
	raw := "Here is the analysis:\n{\"polarity\":\"positive\",\"score\":0.72}\nHope that helps!"
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "positive", result.Polarity)
}

func TestExtractJSON_NestedBracesAndBracesInStrings(t *testing.T) {
	type nested struct {
		Summary string          `json:"summary"`
		Signals map[string]bool `json:"signals"`
	}
	raw := `{"summary":"feels {stuck}","signals":{"overwhelm":true}}`
	result, err := ExtractJSON[nested](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "feels {stuck}", result.Summary)
	assert.True(t, result.Signals["overwhelm"])
}

func TestExtractJSON_CommentsAndLeadingDecimals(t *testing.T) {
	raw := "{\n  \"polarity\": \"negative\", // model chatter\n  /* block */ \"score\": -.4\n}"
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, -0.4, result.Score)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload]("I cannot help with that.", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload](`{"polarity":"negative", broken}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_ValidationFailure(t *testing.T) {
	validator := func(p testPayload) error {
		if p.Score < -1 || p.Score > 1 {
			return fmt.Errorf("score must be in [-1,1], got %f", p.Score)
		}
		return nil
	}
	_, err := ExtractJSON(`{"polarity":"negative","score":-3}`, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestExtractJSONArray_BareArray(t *testing.T) {
	raw := "```json\n[{\"title\":\"Block focus time\",\"priority\":\"high\"},{\"title\":\"Decline optional syncs\",\"priority\":\"medium\"}]\n```"
	items, err := ExtractJSONArray[testItem](raw, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Decline optional syncs", items[1].Title)
}

func TestExtractJSONArray_WrappedInObject(t *testing.T) {
	raw := `{"recommendations":[{"title":"Delegate reviews","priority":"low"}]}`
	items, err := ExtractJSONArray[testItem](raw, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Delegate reviews", items[0].Title)
}

func TestExtractJSONArray_ValidatorRunsPerItem(t *testing.T) {
	raw := `[{"title":"ok","priority":"high"},{"title":"","priority":"urgent"}]`
	validator := func(it testItem) error {
		if it.Title == "" {
			return fmt.Errorf("title required")
		}
		return nil
	}
	_, err := ExtractJSONArray(raw, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "item 1")
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	_, err := ExtractJSONArray[testItem]("no recommendations today", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}
