package sync

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/automation-sync/internal/logging"
	"github.com/nhle/automation-sync/internal/reporter"
)

// recordingLifecycle logs every notification it receives.
type recordingLifecycle struct {
	calls    []string
	beginErr error
	testErrs map[string]error
}

func (l *recordingLifecycle) OnBegin(ctx context.Context, info reporter.RunInfo) error {
	l.calls = append(l.calls, "begin:"+info.Label)
	return l.beginErr
}

func (l *recordingLifecycle) OnTestBegin(ctx context.Context, test reporter.TestCase) error {
	l.calls = append(l.calls, "test-begin:"+test.Title)
	return l.testErrs[test.Name]
}

func (l *recordingLifecycle) OnTestEnd(ctx context.Context, test reporter.TestCase, result reporter.TestResult) {
	l.calls = append(l.calls, "test-end:"+test.Title+":"+result.Status)
}

func (l *recordingLifecycle) OnEnd(ctx context.Context) {
	l.calls = append(l.calls, "end")
}

const stream = `{"Action":"start","Package":"example.com/app"}
{"Action":"run","Package":"example.com/app","Test":"TestLogin"}
{"Action":"run","Package":"example.com/app","Test":"TestLogin/flow_[123]"}
{"Action":"output","Package":"example.com/app","Test":"TestLogin/flow_[123]","Output":"ok\n"}
{"Action":"pass","Package":"example.com/app","Test":"TestLogin/flow_[123]","Elapsed":0.1}
{"Action":"pass","Package":"example.com/app","Test":"TestLogin","Elapsed":0.2}
{"Action":"run","Package":"example.com/app","Test":"TestCheckout/pays_[1,_2]"}
{"Action":"fail","Package":"example.com/app","Test":"TestCheckout/pays_[1,_2]","Elapsed":0.3}
{"Action":"pass","Package":"example.com/app","Elapsed":0.6}
`

func TestRun_DispatchesLifecycleInOrder(t *testing.T) {
	lc := &recordingLifecycle{}
	rn := NewRunner(lc, nil)

	summary, err := rn.Run(context.Background(), strings.NewReader(stream), reporter.RunInfo{Label: "go test ./..."})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"begin:go test ./...",
		"test-begin:TestLogin",
		"test-begin:flow [123]",
		"test-end:flow [123]:pass",
		"test-end:TestLogin:pass",
		"test-begin:pays [1, 2]",
		"test-end:pays [1, 2]:fail",
		"end",
	}, lc.calls)

	assert.Equal(t, 3, summary.TestsStarted)
	assert.Equal(t, 3, summary.TestsFinished)
	assert.False(t, summary.Failed())
}

func TestRun_CollectsFailuresAndStillEnds(t *testing.T) {
	syncErr := errors.New("found more than one test case id")
	lc := &recordingLifecycle{testErrs: map[string]error{
		"TestCheckout/pays_[1,_2]": syncErr,
	}}
	var buf bytes.Buffer
	rn := NewRunner(lc, logging.New(&buf, "azure"))

	summary, err := rn.Run(context.Background(), strings.NewReader(stream), reporter.RunInfo{})
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "pays [1, 2]", summary.Failures[0].Test.Title)
	assert.ErrorIs(t, summary.Failures[0].Err, syncErr)
	assert.True(t, summary.Failed())
	assert.Equal(t, "end", lc.calls[len(lc.calls)-1])
	assert.Contains(t, buf.String(), "azure: example.com/app TestCheckout/pays_[1,_2]: found more than one")
}

func TestRun_FailFastStopsStream(t *testing.T) {
	syncErr := errors.New("boom")
	lc := &recordingLifecycle{testErrs: map[string]error{
		"TestLogin/flow_[123]": syncErr,
	}}
	rn := NewRunner(lc, nil)
	rn.FailFast = true

	_, err := rn.Run(context.Background(), strings.NewReader(stream), reporter.RunInfo{})
	require.ErrorIs(t, err, syncErr)

	assert.NotContains(t, lc.calls, "end")
	assert.NotContains(t, lc.calls, "test-begin:pays [1, 2]")
}

func TestRun_BeginFailureAbortsRun(t *testing.T) {
	beginErr := errors.New("auth error")
	lc := &recordingLifecycle{beginErr: beginErr}
	rn := NewRunner(lc, nil)

	summary, err := rn.Run(context.Background(), strings.NewReader(stream), reporter.RunInfo{})
	require.ErrorIs(t, err, beginErr)
	assert.Nil(t, summary)
	assert.Equal(t, []string{"begin:"}, lc.calls)
}

func TestRun_CountsMalformedLines(t *testing.T) {
	lc := &recordingLifecycle{}
	rn := NewRunner(lc, nil)

	input := "# example.com/app [build failed]\n" + stream
	summary, err := rn.Run(context.Background(), strings.NewReader(input), reporter.RunInfo{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Malformed)
}
