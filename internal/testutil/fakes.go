package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/alexanderramin/ember/internal/llm"
)

// FakeLLM is a scripted llm.LLMClient. Responses are consumed per task in
// order and the last one repeats. A task with neither a script nor an error
// fails with llm.ErrOllamaUnavailable.
type FakeLLM struct {
	mu        sync.Mutex
	responses map[llm.TaskType][]string
	errs      map[llm.TaskType]error
	requests  []llm.GenerateRequest
}

func NewFakeLLM() *FakeLLM {
	return &FakeLLM{
		responses: make(map[llm.TaskType][]string),
		errs:      make(map[llm.TaskType]error),
	}
}

// Script queues responses for task.
func (f *FakeLLM) Script(task llm.TaskType, responses ...string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[task] = append(f.responses[task], responses...)
	delete(f.errs, task)
	return f
}

// Fail makes every call for task return err.
func (f *FakeLLM) Fail(task llm.TaskType, err error) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[task] = err
	return f
}

func (f *FakeLLM) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[req.Task]; ok {
		return nil, err
	}
	queue := f.responses[req.Task]
	if len(queue) == 0 {
		return nil, llm.ErrOllamaUnavailable
	}
	text := queue[0]
	if len(queue) > 1 {
		f.responses[req.Task] = queue[1:]
	}
	return &llm.GenerateResponse{Text: text, Model: "fake", LatencyMs: 1}, nil
}

func (f *FakeLLM) Available(context.Context) bool { return true }

// Requests returns the requests seen so far, optionally filtered by task.
func (f *FakeLLM) Requests(task llm.TaskType) []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []llm.GenerateRequest
	for _, r := range f.requests {
		if task == "" || r.Task == task {
			out = append(out, r)
		}
	}
	return out
}

// FakeEmbedder maps text to a deterministic bag-of-words vector, so texts
// sharing words are similar. Overrides pin exact texts to fixed vectors.
type FakeEmbedder struct {
	Dims      int
	Overrides map[string][]float32
	Err       error

	mu    sync.Mutex
	calls int
}

func NewFakeEmbedder() *FakeEmbedder {
	return &FakeEmbedder{Dims: 64, Overrides: make(map[string][]float32)}
}

func (e *FakeEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	return e.embed(text)
}

func (e *FakeEmbedder) EmbedQuery(_ context.Context, query string) ([]float32, error) {
	return e.embed(query)
}

// Calls returns how many embeddings were requested.
func (e *FakeEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *FakeEmbedder) embed(text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Overrides[text]; ok {
		return append([]float32(nil), v...), nil
	}

	dims := e.Dims
	if dims <= 0 {
		dims = 64
	}
	vec := make([]float32, dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%uint32(dims)]++
	}
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}
