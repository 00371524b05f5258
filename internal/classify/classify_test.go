package classify

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  Counts
	}{
		{
			name:  "empty input",
			paths: nil,
			want:  Counts{},
		},
		{
			name:  "no test files",
			paths: []string{"readme.md", "cmd/main.go", "internal/unit/conv.go"},
			want:  Counts{},
		},
		{
			name: "go test files count as unit tests",
			paths: []string{
				"pkg/client/client.go",
				"pkg/client/client_test.go",
				"test/e2e/suite.go",
			},
			want: Counts{Unit: 1, Total: 2},
		},
		{
			name: "maven layout",
			paths: []string{
				"server/src/main/java/app.java",
				"server/src/test/java/apptest.java",
				"server/src/test/resources/fixture.json",
			},
			want: Counts{Unit: 2, Total: 2},
		},
		{
			name: "unit directory",
			paths: []string{
				"tests/unit/test_parser.py",
				"tests/integration/test_db.py",
				"tests/conftest.py",
			},
			want: Counts{Unit: 1, Total: 3},
		},
		{
			name:  "substring match is permissive",
			paths: []string{"docs/attestation.md", "community/unity_testing.txt"},
			want:  Counts{Unit: 1, Total: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.paths)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.Unit, got.Total)
		})
	}
}

func TestClassify_OrderIndependent(t *testing.T) {
	paths := []string{
		"a/b_test.go",
		"src/test/java/x.java",
		"tests/unit/a.py",
		"tests/e2e/b.py",
		"main.go",
		"testdata/input.txt",
	}
	want := Classify(paths)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), paths...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Classify(shuffled))
	}
}

func TestClassify_LowercasedInput(t *testing.T) {
	raw := []string{"Module/src/Test/FooTest.java", "UnitTests/BarTest.cs"}
	lowered := make([]string, len(raw))
	for i, p := range raw {
		lowered[i] = strings.ToLower(p)
	}

	assert.Equal(t, Counts{Unit: 2, Total: 2}, Classify(lowered))
	assert.Equal(t, Counts{}, Classify(raw), "matching is case-sensitive")
}

func TestCounts_Ratio(t *testing.T) {
	r, ok := Counts{}.Ratio()
	assert.False(t, ok)
	assert.Zero(t, r)

	r, ok = Counts{Unit: 1, Total: 4}.Ratio()
	assert.True(t, ok)
	assert.Equal(t, 0.25, r)
}
