package mocks

import (
	"fmt"

	"github.com/mcoot/userdata-go/internal/dependencies/random"
)

// MockRandom returns queued strings in order. Once the queue is empty it
// falls back to zero-padded sequence numbers, which never repeat.
type MockRandom struct {
	StringResults []string
	stringIndex   int
	fallback      int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	r.fallback++
	return fmt.Sprintf("%0*d", length, r.fallback)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}
