package roundid

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// checkEncoding fails unless id is 26 lowercase Crockford base32 characters
// with a leading 0-7
func checkEncoding(t *testing.T, id string) {
	t.Helper()

	if len(id) != Length {
		t.Fatalf("expected %d characters, got %d (%s)", Length, len(id), id)
	}
	if id[0] > '7' {
		t.Errorf("first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			t.Errorf("invalid character '%c' at position %d", c, i)
		}
	}
}

func TestGenerate(t *testing.T) {
	checkEncoding(t, NewGenerator(nil).Generate())
}

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator(nil)
	ids := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	gen := NewGenerator(nil)
	var ids []string

	for i := 0; i < 10; i++ {
		ids = append(ids, gen.Generate())
		time.Sleep(time.Millisecond)
	}

	for i := 1; i < len(ids); i++ {
		if strings.Compare(ids[i-1], ids[i]) >= 0 {
			t.Errorf("IDs not sorted: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestEncodeBase32(t *testing.T) {
	var zero uuid.UUID
	if got := encodeBase32(zero); got != strings.Repeat("0", Length) {
		t.Errorf("zero uuid encoded as %s", got)
	}

	var max uuid.UUID
	for i := range max {
		max[i] = 0xff
	}
	if got := encodeBase32(max); got != "7"+strings.Repeat("z", Length-1) {
		t.Errorf("max uuid encoded as %s", got)
	}
}

type sequenceSource struct {
	next int
}

func (s *sequenceSource) IntN(n int) int {
	s.next++
	return s.next % n
}

func TestGeneratorWithRandSource(t *testing.T) {
	gen := NewGenerator(&sequenceSource{})

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id := gen.Generate()
		checkEncoding(t, id)
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
