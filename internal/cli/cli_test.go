package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/automation-sync/internal/model"
)

func init() {
	color.NoColor = true
}

// fakeService is a minimal Azure DevOps work item endpoint.
type fakeService struct {
	mu      gosync.Mutex
	status  map[string]string
	patched []string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/_apis/resourceAreas/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/_apis/wit/workitems/")
	status, ok := f.status[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"work item does not exist"}`)
		return
	}

	if r.Method == http.MethodPatch {
		f.patched = append(f.patched, id)
		f.status[id] = model.AutomationStatusAutomated
		status = model.AutomationStatusAutomated
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     json.Number(id),
		"fields": map[string]string{model.AutomationStatusField: status},
	})
}

// harness isolates commands from the user's config, keyring and history.
type harness struct {
	t   *testing.T
	dir string
}

func newHarness(t *testing.T, orgURL string) *harness {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("AUTOMATION_SYNC_AZURE_ORG_URL", orgURL)
	t.Setenv("AUTOMATION_SYNC_AZURE_TOKEN", "test-token")
	t.Setenv("AUTOMATION_SYNC_HISTORY_DB_PATH", filepath.Join(dir, "history.db"))

	return &harness{t: t, dir: dir}
}

// execute runs the root command with args and stdin.
func (h *harness) execute(stdin string, args ...string) (string, string, error) {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd("test")
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", filepath.Join(h.dir, "config.yaml")))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

const goTestStream = `{"Action":"start","Package":"example.com/app"}
{"Action":"run","Package":"example.com/app","Test":"TestLogin/flow_[101]"}
{"Action":"pass","Package":"example.com/app","Test":"TestLogin/flow_[101]","Elapsed":0.1}
{"Action":"run","Package":"example.com/app","Test":"TestLogin/already_done_[102]"}
{"Action":"pass","Package":"example.com/app","Test":"TestLogin/already_done_[102]","Elapsed":0.1}
{"Action":"run","Package":"example.com/app","Test":"TestLogin/unlinked"}
{"Action":"pass","Package":"example.com/app","Test":"TestLogin/unlinked","Elapsed":0.1}
{"Action":"pass","Package":"example.com/app","Elapsed":0.3}
`

func TestRunCmd_UpdatesLinkedCases(t *testing.T) {
	svc := &fakeService{status: map[string]string{
		"101": model.AutomationStatusNotAutomated,
		"102": model.AutomationStatusAutomated,
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	h := newHarness(t, srv.URL)
	stdout, stderr, err := h.execute(goTestStream, "run")
	require.NoError(t, err)

	assert.Equal(t, []string{"101"}, svc.patched)
	assert.Contains(t, stdout, "azure: run finished")
	assert.Contains(t, stderr, "tests seen:   3")
	assert.Contains(t, stderr, "linked cases: 2")

	history, _, err := h.execute("", "history", "--updated")
	require.NoError(t, err)
	assert.Contains(t, history, "Found 1 record(s)")
	assert.Contains(t, history, "TestLogin/flow_[101]")
	assert.NotContains(t, history, "already_done")

	runs, _, err := h.execute("", "history", "--runs")
	require.NoError(t, err)
	assert.Contains(t, runs, "tests=3 updated=1 errors=0")
}

func TestRunCmd_MultipleIDsFailsRun(t *testing.T) {
	svc := &fakeService{status: map[string]string{"1": model.AutomationStatusNotAutomated}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	input := `{"Action":"run","Package":"example.com/app","Test":"TestX/both_[1,_2]"}` + "\n"
	_, stderr, err := newHarness(t, srv.URL).execute(input, "run")
	require.Error(t, err)

	assert.ErrorIs(t, err, errSyncFailed)
	assert.Empty(t, svc.patched)
	assert.Contains(t, stderr, "found more than one test case id in test title: both [1, 2]")
}

func TestRunCmd_RequiresOrgURL(t *testing.T) {
	_, _, err := newHarness(t, "").execute("", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization URL is required")
}

func TestSyncCmd_SingleTitle(t *testing.T) {
	svc := &fakeService{status: map[string]string{"55": model.AutomationStatusNotAutomated}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	h := newHarness(t, srv.URL)
	stdout, _, err := h.execute("", "sync", "checkout [55]")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Marked test case 55 as automated")
	assert.Equal(t, []string{"55"}, svc.patched)

	stdout, _, err = h.execute("", "sync", "checkout [55]")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already up to date")
}

func TestIDsCmd(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantOut    string
		wantStderr string
	}{
		{name: "none", title: "plain title", wantOut: "No test case ids found\n"},
		{name: "single", title: "flow [42]", wantOut: "42\n"},
		{
			name:       "several",
			title:      "flow [1, 2]",
			wantOut:    "1\n2\n",
			wantStderr: "warning: 2 ids found; sync requires exactly one\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := newHarness(t, "").execute("", "ids", tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, stdout)
			assert.Equal(t, tt.wantStderr, stderr)
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://dev.azure.com/contoso"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("dev.azure.com/contoso"))
	assert.Error(t, validateRequired("Token")("  "))
}
