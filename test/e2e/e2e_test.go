package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

var (
	mirrorfsBin string
	projRoot    string
	testEnv     *E2ETestEnvironment
)

func TestMain(m *testing.M) {
	var err error

	// Build the binary once for all tests
	tmpBinDir, err := os.MkdirTemp("", "mirrorfs-bin")
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := os.RemoveAll(tmpBinDir); err != nil {
			panic(err)
		}
	}()

	mirrorfsBin = filepath.Join(tmpBinDir, "mirrorfs")

	// Determine project root
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot determine current file path")
	}
	projRoot = filepath.Join(filepath.Dir(thisFile), "..", "..")

	// Build with debug symbols
	cmd := exec.Command("go", "build", "-o", mirrorfsBin, "-gcflags=all=-N -l", "./cmd")
	cmd.Dir = projRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out))
	}

	testEnv, err = NewE2ETestEnvironment(mirrorfsBin)
	if err != nil {
		panic(err)
	}
	defer testEnv.Close()

	code := m.Run()
	os.Exit(code)
}

func TestE2ESeedAndRead(t *testing.T) {
	inst := testEnv.NewInstance(t)
	inst.Start(t, "--nodes", inst.WriteNodes(t, `[
		{"type": "file", "path": "docs/a.txt", "content": "seeded"},
		{"type": "dir", "path": "docs"}
	]`))
	defer inst.Stop()

	code, body := inst.Get(t, "/read-file", "path", "docs/a.txt")
	if code != http.StatusOK || body != "seeded" {
		t.Fatalf("read-file: got %d %q", code, body)
	}

	data, err := os.ReadFile(filepath.Join(inst.DataDir, "docs", "a.txt"))
	if err != nil {
		t.Fatalf("physical copy missing: %v", err)
	}
	if string(data) != "seeded" {
		t.Fatalf("physical copy mismatch: got %q", string(data))
	}
	if _, err := os.Stat(filepath.Join(inst.RemoteDir, "a.txt")); err != nil {
		t.Fatalf("remote copy missing: %v", err)
	}
}

func TestE2EWritePersistsAcrossRestart(t *testing.T) {
	inst := testEnv.NewInstance(t)
	inst.Start(t)

	steps := []struct {
		path string
		kv   []string
		want string
	}{
		{"/create-folder", []string{"path", "notes"}, "Folder created at notes"},
		{"/create-file-api", []string{"path", "notes/todo.md"}, "File created at notes/todo.md"},
		{"/write-file", []string{"path", "notes/todo.md", "content", "- milk"}, "notes/todo.md updated"},
		{"/append-file", []string{"path", "notes/todo.md", "content", "\n- eggs"}, "notes/todo.md updated"},
	}
	for _, step := range steps {
		code, body := inst.Get(t, step.path, step.kv...)
		if code != http.StatusOK || body != step.want {
			t.Fatalf("%s: got %d %q, want %q", step.path, code, body, step.want)
		}
	}
	inst.Stop()

	inst.Start(t)
	defer inst.Stop()

	code, body := inst.Get(t, "/read-file", "path", "notes/todo.md")
	if code != http.StatusOK || body != "- milk\n- eggs" {
		t.Fatalf("after restart: got %d %q", code, body)
	}

	code, body = inst.Get(t, "/metadata")
	if code != http.StatusOK {
		t.Fatalf("metadata: got %d %q", code, body)
	}
	var rows []struct {
		Path string `json:"path"`
		Size int64  `json:"size"`
	}
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		t.Fatalf("metadata json: %v", err)
	}
	if len(rows) != 1 || rows[0].Size != int64(len("- milk\n- eggs")) {
		t.Fatalf("unexpected metadata rows: %+v", rows)
	}
	if !strings.HasSuffix(rows[0].Path, filepath.Join("notes", "todo.md")) {
		t.Fatalf("metadata keyed by %q", rows[0].Path)
	}
}

func TestE2ECloudRoundTrip(t *testing.T) {
	inst := testEnv.NewInstance(t)
	inst.Start(t)
	defer inst.Stop()

	inst.Get(t, "/create-file-api", "path", "report.csv")
	inst.Get(t, "/write-file", "path", "report.csv", "content", "a,b")

	code, body := inst.Post(t, "/delete-local", "path", "report.csv")
	if code != http.StatusOK || body != "Deleted report.csv from local" {
		t.Fatalf("delete-local: got %d %q", code, body)
	}
	if code, _ := inst.Get(t, "/read-file", "path", "report.csv"); code != http.StatusNotFound {
		t.Fatalf("file still readable after delete: %d", code)
	}

	code, body = inst.Post(t, "/download", "path", "report.csv")
	if code != http.StatusOK || body != "Downloaded report.csv from cloud" {
		t.Fatalf("download: got %d %q", code, body)
	}
	code, body = inst.Get(t, "/read-file", "path", "downloads/report.csv")
	if code != http.StatusOK || body != "a,b" {
		t.Fatalf("downloaded content: got %d %q", code, body)
	}

	code, body = inst.Get(t, "/cloud")
	if code != http.StatusOK || !strings.Contains(body, `"name":"report.csv"`) {
		t.Fatalf("cloud listing: got %d %q", code, body)
	}

	code, body = inst.Post(t, "/delete-cloud", "path", "report.csv")
	if code != http.StatusOK || body != "Deleted report.csv from cloud" {
		t.Fatalf("delete-cloud: got %d %q", code, body)
	}
	if _, err := os.Stat(filepath.Join(inst.RemoteDir, "report.csv")); !os.IsNotExist(err) {
		t.Fatalf("remote copy still present: %v", err)
	}
	if code, _ := inst.Post(t, "/delete-cloud", "path", "report.csv"); code != http.StatusNotFound {
		t.Fatalf("second delete-cloud: got %d", code)
	}
}

func TestE2EErrors(t *testing.T) {
	inst := testEnv.NewInstance(t)
	inst.Start(t)
	defer inst.Stop()

	tests := []struct {
		method string
		path   string
		kv     []string
		code   int
		body   string
	}{
		{http.MethodGet, "/read-file", []string{"path", "nope.txt"}, http.StatusNotFound, "File not found"},
		{http.MethodGet, "/create-file-api", nil, http.StatusBadRequest, "Missing path"},
		{http.MethodGet, "/write-file", []string{"path", "x.txt"}, http.StatusBadRequest, "Missing path or content"},
		{http.MethodPost, "/download", []string{"path", "ghost.txt"}, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		code, body := inst.Do(t, tt.method, tt.path, tt.kv...)
		if code != tt.code {
			t.Errorf("%s %s: got %d %q, want %d", tt.method, tt.path, code, body, tt.code)
		}
		if tt.body != "" && body != tt.body {
			t.Errorf("%s %s: got body %q, want %q", tt.method, tt.path, body, tt.body)
		}
	}
}

func TestE2EMountReadOnly(t *testing.T) {
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("FUSE not available")
	}
	if _, err := exec.LookPath("fusermount"); err != nil {
		t.Skip("fusermount not installed")
	}

	inst := testEnv.NewInstance(t)
	inst.WriteSnapshot(t, `{"docs": {"readme.txt": "Hello, mirrorfs!"}}`)
	mountDir := filepath.Join(inst.Dir, "mnt")
	if err := os.MkdirAll(mountDir, 0o755); err != nil {
		t.Fatalf("Failed to create mount dir: %v", err)
	}
	if err := inst.startCommand(t, "mount", "-u", mountDir); err != nil {
		t.Skipf("mount not usable here: %v", err)
	}
	defer inst.Stop()

	if err := waitForFile(filepath.Join(mountDir, "docs", "readme.txt"), 15*time.Second); err != nil {
		stdout, stderr := inst.GetLogs()
		t.Skipf("mount not usable here: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	data, err := os.ReadFile(filepath.Join(mountDir, "docs", "readme.txt"))
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "Hello, mirrorfs!" {
		t.Fatalf("content mismatch: got %q", string(data))
	}

	inst.Get(t, "/write-file", "path", "docs/readme.txt", "content", "changed")
	data, err = os.ReadFile(filepath.Join(mountDir, "docs", "readme.txt"))
	if err != nil {
		t.Fatalf("failed to reread file: %v", err)
	}
	if string(data) != "changed" {
		t.Fatalf("mount did not follow write: got %q", string(data))
	}

	if err := os.WriteFile(filepath.Join(mountDir, "docs", "readme.txt"), []byte("x"), 0o644); err == nil {
		t.Fatalf("write through read-only mount succeeded")
	}
}

func waitForFile(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %s", path)
}

// E2ETestEnvironment manages shared resources for all e2e tests
type E2ETestEnvironment struct {
	Bin     string
	BaseDir string
}

// Instance is one mirrorfs process with its own state directories. It can be
// stopped and started again on the same state.
type Instance struct {
	Dir       string
	DataDir   string
	RemoteDir string
	port      int
	cmd       *exec.Cmd
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

// NewE2ETestEnvironment creates a shared base directory for instances
func NewE2ETestEnvironment(bin string) (*E2ETestEnvironment, error) {
	baseDir, err := os.MkdirTemp("", "mirrorfs-e2e-tests")
	if err != nil {
		return nil, err
	}
	return &E2ETestEnvironment{Bin: bin, BaseDir: baseDir}, nil
}

// Close cleans up the test environment
func (env *E2ETestEnvironment) Close() {
	if env.BaseDir != "" {
		_ = os.RemoveAll(env.BaseDir) // Best effort cleanup
	}
}

// NewInstance prepares test-specific directories
func (env *E2ETestEnvironment) NewInstance(t *testing.T) *Instance {
	testID := strings.ReplaceAll(t.Name(), "/", "_")
	dir := filepath.Join(env.BaseDir, testID)
	inst := &Instance{
		Dir:       dir,
		DataDir:   filepath.Join(dir, "data"),
		RemoteDir: filepath.Join(dir, "remote"),
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create instance dir: %v", err)
	}
	return inst
}

// WriteNodes writes a node definitions file and returns its path
func (inst *Instance) WriteNodes(t *testing.T, defs string) string {
	p := filepath.Join(inst.Dir, "nodes.json")
	if err := os.WriteFile(p, []byte(defs), 0o644); err != nil {
		t.Fatalf("Failed to write nodes file: %v", err)
	}
	return p
}

// WriteSnapshot seeds the persisted tree before start
func (inst *Instance) WriteSnapshot(t *testing.T, tree string) {
	if err := os.WriteFile(filepath.Join(inst.Dir, "filesystem.json"), []byte(tree), 0o644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}
}

func freePort(t *testing.T) int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// Start runs the serve command and waits until the HTTP API answers
func (inst *Instance) Start(t *testing.T, extra ...string) {
	inst.StartCommand(t, append([]string{"serve"}, extra...)...)
}

// StartCommand runs the given subcommand with the instance's state flags
func (inst *Instance) StartCommand(t *testing.T, args ...string) {
	if err := inst.startCommand(t, args...); err != nil {
		t.Fatal(err)
	}
}

func (inst *Instance) startCommand(t *testing.T, args ...string) error {
	inst.port = freePort(t)
	args = append(args,
		"-v", "4",
		"--port", fmt.Sprint(inst.port),
		"--data-dir", inst.DataDir,
		"--store", filepath.Join(inst.Dir, "filesystem.json"),
		"--metadata", filepath.Join(inst.Dir, "metadata.db"),
		"--remote", "dir",
		"--remote-dir", inst.RemoteDir,
	)
	cmd := exec.Command(testEnv.Bin, args...)
	cmd.Dir = inst.Dir

	inst.stdout, inst.stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd.Stdout = inst.stdout
	cmd.Stderr = inst.stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mirrorfs: %w", err)
	}
	inst.cmd = cmd

	if err := inst.WaitForReady(15 * time.Second); err != nil {
		stdout, stderr := inst.GetLogs()
		inst.Stop()
		return fmt.Errorf("mirrorfs not ready: %w\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	return nil
}

// WaitForReady polls the tree endpoint until it answers
func (inst *Instance) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(inst.url("/filesystem"))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for HTTP server on port %d", inst.port)
}

// Stop gracefully stops the process
func (inst *Instance) Stop() {
	if inst.cmd == nil || inst.cmd.Process == nil {
		return
	}
	// Send interrupt signal
	_ = inst.cmd.Process.Signal(os.Interrupt) // Process may have already exited

	done := make(chan error, 1)
	go func() {
		done <- inst.cmd.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		// Force kill if graceful shutdown takes too long
		_ = inst.cmd.Process.Kill() // Process may have already exited
		<-done
	}
	inst.cmd = nil
}

func (inst *Instance) url(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", inst.port, path)
}

// Do sends a request with kv pairs as query parameters
func (inst *Instance) Do(t *testing.T, method, path string, kv ...string) (int, string) {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	target := inst.url(path)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (inst *Instance) Get(t *testing.T, path string, kv ...string) (int, string) {
	return inst.Do(t, http.MethodGet, path, kv...)
}

func (inst *Instance) Post(t *testing.T, path string, kv ...string) (int, string) {
	return inst.Do(t, http.MethodPost, path, kv...)
}

// GetLogs returns the stdout and stderr from the process
func (inst *Instance) GetLogs() (stdout, stderr string) {
	if inst.stdout == nil {
		return "", ""
	}
	return inst.stdout.String(), inst.stderr.String()
}
