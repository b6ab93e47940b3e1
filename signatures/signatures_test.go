package signatures

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/RyanBlaney/sonido-emotion/algorithms/stats"
	"github.com/RyanBlaney/sonido-emotion/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func f64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func TestNewSetValidation(t *testing.T) {
	tests := []struct {
		name string
		sigs []Signature
		err  bool
	}{
		{"empty", nil, false},
		{"ok", []Signature{{"A", []float32{1, 0}}, {"B", []float32{0, 1}}}, false},
		{"empty label", []Signature{{"", []float32{1}}}, true},
		{"duplicate", []Signature{{"A", []float32{1}}, {"A", []float32{2}}}, true},
		{"ragged", []Signature{{"A", []float32{1, 2}}, {"B", []float32{1}}}, true},
		{"zero length", []Signature{{"A", nil}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(tt.sigs)
			if (err != nil) != tt.err {
				t.Errorf("NewSet err = %v, want err %v", err, tt.err)
			}
		})
	}
}

func TestSetIsImmutable(t *testing.T) {
	vec := []float32{1, 2, 3}
	set, err := NewSet([]Signature{{"A", vec}})
	if err != nil {
		t.Fatal(err)
	}
	vec[0] = 99
	if got, _ := set.Get("A"); got.Vector[0] != 1 {
		t.Error("NewSet must copy vectors")
	}

	all := set.All()
	all[0].Vector[1] = 99
	if set.At(0).Vector[1] != 2 {
		t.Error("All must return copies")
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a, err := Synthetic(DefaultSyntheticParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthetic(DefaultSyntheticParams())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Neutral", "Happy", "Sad", "Anger", "Disgust"}
	if got := a.Labels(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if a.Dim() != 2048 {
		t.Fatalf("dim = %d, want 2048", a.Dim())
	}

	for i := range a.Len() {
		va, vb := a.At(i).Vector, b.At(i).Vector
		for j := range va {
			if va[j] != vb[j] {
				t.Fatalf("%s differs at %d between runs", a.At(i).Label, j)
			}
		}
		norm := 0.0
		for _, v := range va {
			norm += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
			t.Errorf("%s norm = %v, want 1", a.At(i).Label, math.Sqrt(norm))
		}
	}
}

func TestSyntheticOffsetsSeparable(t *testing.T) {
	// 0.15 and 0.2 have both been used as the per-label shift; either must
	// keep every pair of labels well apart.
	for _, offset := range []float64{SyntheticOffset, 0.2} {
		p := DefaultSyntheticParams()
		p.Offset = offset
		set, err := Synthetic(p)
		if err != nil {
			t.Fatal(err)
		}

		for i := range set.Len() {
			for j := range set.Len() {
				if i == j {
					continue
				}
				sim := stats.CosineSimilarityFunc(f64(set.At(i).Vector), f64(set.At(j).Vector))
				if sim > 0.9 {
					t.Errorf("offset %v: cos(%s, %s) = %v, want < 0.9", offset, set.At(i).Label, set.At(j).Label, sim)
				}
			}
		}
	}
}

func TestSyntheticRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SyntheticParams)
	}{
		{"negative dim", func(p *SyntheticParams) { p.Dim = -5 }},
		{"zero dim", func(p *SyntheticParams) { p.Dim = 0 }},
		{"no labels", func(p *SyntheticParams) { p.Labels = nil }},
		{"nan offset", func(p *SyntheticParams) { p.Offset = math.NaN() }},
		{"duplicate labels", func(p *SyntheticParams) { p.Labels = []string{"Sad", "Sad"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSyntheticParams()
			tt.modify(&p)
			if _, err := Synthetic(p); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Synthetic.Dim = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative synthetic dim should be rejected")
	}

	cfg.EnableSynthetic = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled generator params should not be checked: %v", err)
	}
}

func TestDecodeJSONPreservesOrder(t *testing.T) {
	doc := `{"Zed": [1, 0, 0], "Alpha": [0, 1, 0], "Mid": [0, 0, 1.5]}`
	set, err := DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got := strings.Join(set.Labels(), ","); got != "Zed,Alpha,Mid" {
		t.Errorf("labels = %s, want Zed,Alpha,Mid", got)
	}
	if sig, _ := set.Get("Mid"); sig.Vector[2] != 1.5 {
		t.Errorf("Mid = %v", sig.Vector)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	docs := []string{
		``,
		`[]`,
		`{"A": "x"}`,
		`{"A": [1, 2], "B": [1]}`,
		`{"A": [1, 2]`,
		`{"A": [1], "A": [2]}`,
	}
	for _, doc := range docs {
		if _, err := DecodeJSON(strings.NewReader(doc)); err == nil {
			t.Errorf("DecodeJSON(%q) should fail", doc)
		}
	}
}

func TestWriteJSONRoundTripKeepsOrder(t *testing.T) {
	set, err := Synthetic(SyntheticParams{Seed: 7, Labels: []string{"Sad", "Happy", "Calm"}, Dim: 16, Offset: 0.15})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, set); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if strings.Join(got.Labels(), ",") != "Sad,Happy,Calm" {
		t.Errorf("labels = %v", got.Labels())
	}
	for i := range set.Len() {
		for j, v := range set.At(i).Vector {
			if got.At(i).Vector[j] != v {
				t.Fatalf("%s[%d] = %v, want %v", set.At(i).Label, j, got.At(i).Vector[j], v)
			}
		}
	}
}

func TestCheckpointSkipsOtherEntries(t *testing.T) {
	set, err := NewSet([]Signature{{"Happy", []float32{0.5, 0.5}}, {"Anger", []float32{1, 0}}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	meta := map[string]any{"epoch": 12, "model_state": map[string]any{"fc.weight": []float64{1, 2, 3}}}
	if err := WriteCheckpoint(&buf, set, meta); err != nil {
		t.Fatalf("WriteCheckpoint: %v", err)
	}

	got, err := DecodeCheckpoint(&buf)
	if err != nil {
		t.Fatalf("DecodeCheckpoint: %v", err)
	}
	if strings.Join(got.Labels(), ",") != "Happy,Anger" {
		t.Errorf("labels = %v", got.Labels())
	}
	if sig, _ := got.Get("Anger"); sig.Vector[0] != 1 {
		t.Errorf("Anger = %v", sig.Vector)
	}
}

func TestCheckpointWithoutSignatures(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCheckpoint(&buf, Empty(), map[string]any{"epoch": 1}); err != nil {
		t.Fatal(err)
	}
	// an empty signatures map decodes to an empty set; the source rejects it
	set, err := DecodeCheckpoint(&buf)
	if err != nil {
		t.Fatalf("DecodeCheckpoint: %v", err)
	}
	if !set.IsEmpty() {
		t.Errorf("set = %v, want empty", set)
	}

	if _, err := DecodeCheckpoint(bytes.NewReader([]byte{0x93, 1, 2, 3})); err == nil {
		t.Error("array checkpoint should fail")
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	set   *Set
	err   error
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Load() (*Set, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.set, c.err
}

func TestStoreFallsThrough(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fallback, _ := NewSet([]Signature{{"Calm", []float32{1}}})
	failing := &countingSource{err: errors.New("boom")}
	store := NewStore(
		&JSONFileSource{Path: bad},
		&CheckpointSource{Path: filepath.Join(dir, "missing.msgpack")},
		failing,
		&StaticSource{Set: Empty()},
		&StaticSource{Set: fallback},
		&SyntheticSource{Params: DefaultSyntheticParams()},
	)

	set := store.Load()
	if set != fallback {
		t.Fatalf("Load() = %v, want the static fallback", set)
	}
	if store.Source() != "static" {
		t.Errorf("Source() = %q", store.Source())
	}
	if failing.calls != 1 {
		t.Errorf("failing source called %d times", failing.calls)
	}
}

func TestStoreLoadsJSONFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fallback_signatures.json")
	if err := os.WriteFile(path, []byte(`{"Sad": [0, 1], "Happy": [1, 0]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStoreFromConfig(&Config{Path: path, EnableSynthetic: true, Synthetic: DefaultSyntheticParams()})
	set := store.Load()
	if strings.Join(set.Labels(), ",") != "Sad,Happy" {
		t.Errorf("labels = %v, want file labels", set.Labels())
	}
}

func TestStoreLoadsCheckpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.msgpack")

	want, _ := NewSet([]Signature{{"Disgust", []float32{0, 0, 1}}})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteCheckpoint(f, want, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	store := NewStoreFromConfig(&Config{Path: filepath.Join(dir, "absent.json"), CheckpointPath: path})
	if got := store.Load(); strings.Join(got.Labels(), ",") != "Disgust" {
		t.Errorf("labels = %v", got.Labels())
	}
}

func TestStoreAllFailIsEmpty(t *testing.T) {
	store := NewStore(&JSONFileSource{}, &StaticSource{})
	set := store.Load()
	if set == nil || !set.IsEmpty() {
		t.Fatalf("Load() = %v, want empty set", set)
	}
	if store.Source() != "" {
		t.Errorf("Source() = %q, want empty", store.Source())
	}
}

type panickingSource struct{}

func (panickingSource) Name() string { return "panicking" }

func (panickingSource) Load() (*Set, error) {
	panic("corrupt signature source")
}

func TestStoreSurvivesPanickingSource(t *testing.T) {
	fallback, _ := NewSet([]Signature{{"Calm", []float32{1}}})
	store := NewStore(panickingSource{}, &StaticSource{Set: fallback})
	if got := store.Load(); got != fallback {
		t.Fatalf("Load() = %v, want the fallback after a panic", got)
	}

	only := NewStore(panickingSource{})
	first := only.Load()
	if first == nil || !first.IsEmpty() {
		t.Fatalf("Load() = %v, want empty set", first)
	}
	if second := only.Load(); second != first {
		t.Error("callers after a panicking load saw different sets")
	}
}

func TestStoreInvalidSyntheticParamsIsStable(t *testing.T) {
	params := DefaultSyntheticParams()
	params.Dim = -5
	store := NewStoreFromConfig(&Config{EnableSynthetic: true, Synthetic: params})

	first := store.Load()
	if first == nil || !first.IsEmpty() {
		t.Fatalf("Load() = %v, want empty set", first)
	}
	if store.Load() != first || store.Source() != "" {
		t.Error("store state changed between calls")
	}
}

func TestStoreConcurrentFirstUse(t *testing.T) {
	set, _ := NewSet([]Signature{{"Neutral", []float32{1, 2}}})
	src := &countingSource{set: set}
	store := NewStore(src)

	const n = 32
	results := make([]*Set, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = store.Load()
		}()
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("caller %d got a different set", i)
		}
	}
	if src.calls != 1 {
		t.Errorf("source loaded %d times, want 1", src.calls)
	}
}

func TestLoadErrorUnwraps(t *testing.T) {
	_, err := (&JSONFileSource{Path: filepath.Join(t.TempDir(), "nope.json")}).Load()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadError should unwrap to os.ErrNotExist: %v", err)
	}
}
