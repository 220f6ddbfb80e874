package caseid

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{name: "no brackets", title: "Login flow", want: nil},
		{name: "empty title", title: "", want: nil},
		{name: "non-numeric brackets", title: "Login [smoke]", want: nil},
		{name: "mixed content brackets", title: "Login [12a]", want: nil},
		{name: "single id", title: "Test [42]", want: []string{"42"}},
		{name: "comma separated", title: "Test [1, 2,3]", want: []string{"1", "2", "3"}},
		{name: "multiple groups", title: "Test [1][2]", want: []string{"1", "2"}},
		{
			name:  "groups spread across title",
			title: "[7] Login flow [123, 456] done",
			want:  []string{"7", "123", "456"},
		},
		{name: "padding inside brackets", title: "Test [  99  ]", want: []string{"99"}},
		{name: "empty entries kept", title: "Test [1,,2]", want: []string{"1", "", "2"}},
		{name: "trailing comma", title: "Test [1,]", want: []string{"1", ""}},
		{name: "whitespace only group", title: "Test [ ]", want: []string{""}},
		{name: "duplicates preserved", title: "Test [5] again [5]", want: []string{"5", "5"}},
		{name: "multiline title", title: "first [1]\nsecond [2]", want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.title))
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	title := "Checkout [10, 20] and [30]"
	first := Extract(title)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(title))
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("123")
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	_, err = ParseID("")
	assert.ErrorIs(t, err, strconv.ErrSyntax)

	_, err = ParseID("99999999999999999999999")
	require.Error(t, err)
	assert.ErrorIs(t, err, strconv.ErrRange)
}
