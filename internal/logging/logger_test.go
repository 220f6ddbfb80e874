package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrintf_Format(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "azure")

	l.Printf("run finished")
	l.Printf("updated %d item(s)\n", 2)

	assert.Equal(t, "azure: run finished\nazure: updated 2 item(s)\n", buf.String())
}

func TestPrintf_NilLogger(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Printf("ignored") })
}

func TestPrintf_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "azure")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Printf("line %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "azure: line "), line)
	}
}

func TestWithColor_RespectsNoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	New(&buf, "azure").WithColor().Printf("hello")

	assert.Equal(t, "azure: hello\n", buf.String())
}
