package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/signatures"
)

// run executes the command tree with a config that only uses the synthetic
// signatures, so no files in the working directory are consulted
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prev := logging.GetGlobalLogger()
	t.Cleanup(func() { logging.SetGlobalLogger(prev) })

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	doc := "log_level: error\nsignatures:\n  path: \"\"\n  checkpoint_path: \"\"\n"
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestGenAudioThenClassify(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "gen-audio", "--out", dir, "--per-variant", "1", "--duration", "1")
	if err != nil {
		t.Fatalf("gen-audio: %v", err)
	}
	paths := strings.Fields(out)
	if len(paths) != 4 {
		t.Fatalf("gen-audio wrote %d files, want 4: %q", len(paths), out)
	}

	out, err = run(t, "classify", paths[0], "--message", "smoke")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	var res struct {
		State    string  `json:"state"`
		Accuracy float64 `json:"accuracy"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("classify output %q: %v", out, err)
	}
	found := false
	for _, l := range signatures.SyntheticLabels {
		if l == res.State {
			found = true
		}
	}
	if !found {
		t.Errorf("state %q not a signature label", res.State)
	}
	if res.Accuracy < 0.86 || res.Accuracy > 0.97 {
		t.Errorf("accuracy %v out of range", res.Accuracy)
	}
}

func TestClassifyDetails(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "gen-audio", "--out", dir, "--per-variant", "1", "--duration", "1")
	if err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "classify", "--details", strings.Fields(out)[0])
	if err != nil {
		t.Fatal(err)
	}

	var d classifyDetails
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("details output %q: %v", out, err)
	}
	if d.Outcome != "success" {
		t.Errorf("outcome = %q, want success", d.Outcome)
	}
	if len(d.Similarities) != len(signatures.SyntheticLabels) {
		t.Errorf("got %d similarities, want %d", len(d.Similarities), len(signatures.SyntheticLabels))
	}
	if !d.Reconciled {
		t.Error("feature matrix should be reconciled to the signature dimension")
	}
}

func TestClassifyRejectsBadAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "classify", path); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
	if _, err := run(t, "classify", filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSignaturesExport(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "sigs.json")
	if _, err := run(t, "signatures", "export", "--out", jsonPath, "--dim", "32"); err != nil {
		t.Fatalf("export json: %v", err)
	}

	f, err := os.Open(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	set, err := signatures.DecodeJSON(f)
	if err != nil {
		t.Fatalf("decode exported json: %v", err)
	}
	if set.Dim() != 32 || set.Len() != len(signatures.SyntheticLabels) {
		t.Errorf("exported set = %s", set)
	}

	params := signatures.DefaultSyntheticParams()
	params.Dim = 32
	want, err := signatures.Synthetic(params)
	if err != nil {
		t.Fatal(err)
	}
	for i, sig := range want.All() {
		got := set.At(i)
		if got.Label != sig.Label {
			t.Fatalf("label %d = %q, want %q", i, got.Label, sig.Label)
		}
		for j := range sig.Vector {
			if got.Vector[j] != sig.Vector[j] {
				t.Fatalf("%s[%d] = %v, want %v", sig.Label, j, got.Vector[j], sig.Vector[j])
			}
		}
	}
}

func TestSignaturesExportCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.msgpack")
	if _, err := run(t, "signatures", "export", "--format", "checkpoint", "--out", path, "--dim", "16", "--offset", "0.2"); err != nil {
		t.Fatalf("export checkpoint: %v", err)
	}

	set, err := (&signatures.CheckpointSource{Path: path}).Load()
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if set.Dim() != 16 {
		t.Errorf("dim = %d, want 16", set.Dim())
	}
}

func TestSignaturesExportUnknownFormat(t *testing.T) {
	if _, err := run(t, "signatures", "export", "--format", "csv"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestSignaturesExportRejectsBadFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--dim", "-1"}, "--dim"},
		{[]string{"--dim", "0"}, "--dim"},
		{[]string{"--offset", "NaN"}, "--offset"},
	}
	for _, tt := range tests {
		args := append([]string{"signatures", "export", "--out", filepath.Join(t.TempDir(), "x.json")}, tt.args...)
		_, err := run(t, args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("export %v err = %v, want mention of %s", tt.args, err, tt.want)
		}
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := run(t, "--log-level", "loud", "gen-audio", "--out", t.TempDir(), "--per-variant", "1"); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
