package names_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"formscan/internal/names"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want names.Parts
	}{
		{in: "Harry S.", want: names.Parts{FirstName: "Harry", LastName: "S."}},
		{in: "Sarah Johnson", want: names.Parts{FirstName: "Sarah", LastName: "Johnson"}},
		{in: "Cher", want: names.Parts{FirstName: "Cher"}},
		{in: "", want: names.Parts{}},
		{in: "   ", want: names.Parts{}},
		{in: "  Mary   Ann   Lee ", want: names.Parts{FirstName: "Mary Ann", LastName: "Lee"}},
		{in: "Mary Ann S.", want: names.Parts{FirstName: "Mary Ann", LastName: "S."}},
		{in: "harry s.", want: names.Parts{FirstName: "harry", LastName: "s."}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, names.Split(tt.in))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "Sarah Johnson", names.Join("Sarah", "Johnson"))
	assert.Equal(t, "Cher", names.Join("Cher", ""))
	assert.Equal(t, "Lee", names.Join("", " Lee "))
	assert.Equal(t, "", names.Join("", ""))
}
