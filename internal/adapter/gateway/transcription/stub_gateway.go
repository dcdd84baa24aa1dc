package transcription

import (
	"context"
	"strings"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

// StubDuration is the duration reported by StubGateway, in seconds
const StubDuration = 180

const (
	mergeSortLecture = "Merge sort is a divide and conquer algorithm that divides the input array into two halves, " +
		"recursively sorts them, and then merges the sorted halves. " +
		"It has a time complexity of O(n log n) and is more efficient than simple algorithms like bubble sort or insertion sort. " +
		"The merge process is the key operation, where we combine two sorted arrays into a single sorted array. " +
		"This algorithm is stable, meaning it preserves the relative order of equal elements in the sorted output."

	quickSortLecture = "Quick sort picks a pivot element and partitions the array so that smaller elements come before it " +
		"and larger elements come after it. Each partition is then sorted recursively. " +
		"On average it runs in O(n log n) time, but a poor pivot choice degrades it to O(n squared). " +
		"It sorts in place, so it needs very little extra memory, although it is not stable."

	binarySearchLecture = "Binary search finds a target in a sorted array by repeatedly halving the search interval. " +
		"We compare the target with the middle element and discard the half that cannot contain it. " +
		"Because the interval halves at every step, the running time is O(log n). " +
		"The array must be sorted first, and off-by-one errors in the bounds are the most common bug."

	// genericLecture deliberately names no algorithm
	genericLecture = "Welcome to today's lecture. We start with an overview of the main concepts and why they matter. " +
		"Then we walk through a worked example step by step and discuss the common pitfalls. " +
		"Finally we summarize the key takeaways and outline the reading for next week."
)

// StubGateway returns a canned transcript chosen from the upload name.
// The audio itself is ignored.
type StubGateway struct{}

var _ output.TranscriptionGateway = (*StubGateway)(nil)

// NewStubGateway creates a deterministic transcription gateway
func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (g *StubGateway) Transcribe(ctx context.Context, req output.TranscriptionRequest) (*output.TranscriptionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &output.TranscriptionResult{
		Text:     stubTranscript(req.FileName),
		Duration: StubDuration,
	}, nil
}

func stubTranscript(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "quick"):
		return quickSortLecture
	case strings.Contains(name, "merge"):
		return mergeSortLecture
	case strings.Contains(name, "binary"):
		return binarySearchLecture
	default:
		return genericLecture
	}
}

func (g *StubGateway) Name() string {
	return "stub"
}

func (g *StubGateway) HealthCheck(ctx context.Context) error {
	return nil
}
