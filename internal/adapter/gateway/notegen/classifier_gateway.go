package notegen

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

// Category is a lecture subject recognised by the classifier
type Category string

const (
	CategoryMergeSort    Category = "merge_sort"
	CategoryQuickSort    Category = "quick_sort"
	CategoryBinarySearch Category = "binary_search"
	CategoryGeneric      Category = "generic"
)

//go:embed curricula.yaml
var curriculaYAML []byte

type curriculum struct {
	Title  string                  `yaml:"title"`
	Blocks []output.GeneratedBlock `yaml:"blocks"`
}

// Classify picks a category from the transcript, then from the upload name
func Classify(transcript, fileName string) Category {
	text := strings.ToLower(transcript)
	switch {
	case strings.Contains(text, "merge sort") || strings.Contains(text, "mergesort"):
		return CategoryMergeSort
	case strings.Contains(text, "quick sort") || strings.Contains(text, "quicksort"):
		return CategoryQuickSort
	case strings.Contains(text, "binary search") || strings.Contains(text, "binary tree"):
		return CategoryBinarySearch
	}

	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "quick"):
		return CategoryQuickSort
	case strings.Contains(name, "merge"):
		return CategoryMergeSort
	case strings.Contains(name, "binary"):
		return CategoryBinarySearch
	}
	return CategoryGeneric
}

// ClassifierGateway implements output.NoteGenerationGateway without a model:
// it classifies the transcript and returns a canned curriculum
type ClassifierGateway struct {
	curricula map[Category]curriculum
}

var _ output.NoteGenerationGateway = (*ClassifierGateway)(nil)

// NewClassifierGateway loads the embedded curricula
func NewClassifierGateway() (*ClassifierGateway, error) {
	var curricula map[Category]curriculum
	if err := yaml.Unmarshal(curriculaYAML, &curricula); err != nil {
		return nil, fmt.Errorf("decode curricula: %w", err)
	}
	for _, c := range []Category{CategoryMergeSort, CategoryQuickSort, CategoryBinarySearch, CategoryGeneric} {
		if len(curricula[c].Blocks) == 0 {
			return nil, fmt.Errorf("curriculum %q is missing", c)
		}
	}
	return &ClassifierGateway{curricula: curricula}, nil
}

// MustNewClassifierGateway is NewClassifierGateway for the embedded data, which is known good
func MustNewClassifierGateway() *ClassifierGateway {
	g, err := NewClassifierGateway()
	if err != nil {
		panic(err)
	}
	return g
}

func (g *ClassifierGateway) Generate(ctx context.Context, req output.GenerationRequest) (output.GenerationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := g.curricula[Classify(req.Transcript, req.FileName)]
	blocks := make([]output.GeneratedBlock, len(c.Blocks))
	for i, b := range c.Blocks {
		blocks[i] = b
		if b.Checked != nil {
			v := *b.Checked
			blocks[i].Checked = &v
		}
	}
	return output.Parsed{Title: c.Title, Blocks: blocks}, nil
}

func (g *ClassifierGateway) Name() string {
	return "classifier"
}

func (g *ClassifierGateway) HealthCheck(ctx context.Context) error {
	return nil
}
