package sentinel

import (
	"errors"
	"expvar"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/reflex-dodger/internal/core"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

type fakeViewport struct {
	outerW, outerH int
	innerW, innerH int
}

func (v *fakeViewport) OuterSize() (int, int) { return v.outerW, v.outerH }
func (v *fakeViewport) InnerSize() (int, int) { return v.innerW, v.innerH }

type fakeEntropy struct {
	generation uint64
	frozen     bool
}

func (e *fakeEntropy) Generation() uint64 { return e.generation }

func (e *fakeEntropy) Freeze() error {
	e.frozen = true
	return nil
}

type fakeScripts struct {
	fn       func(Script)
	canceled int
}

func (s *fakeScripts) Subscribe(fn func(Script)) func() {
	s.fn = fn
	return func() { s.canceled++ }
}

func TestViewportProbe(t *testing.T) {
	vp := &fakeViewport{outerW: 1000, outerH: 600, innerW: 800, innerH: 600}
	f := newFixture(t, Host{Viewport: vp})
	f.m.Start()

	f.sched.Advance(2 * viewportInterval)
	if f.bans.IsBanned() {
		t.Fatal("banned before three consecutive samples")
	}

	f.sched.Advance(viewportInterval)
	if !f.bans.IsBanned() {
		t.Fatal("expected ban after three open samples")
	}
	entries := f.m.Log()
	if len(entries) != 1 {
		t.Fatalf("log length = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Reason != "Developer tools interface detected" || e.Severity != 130 {
		t.Errorf("entry = %+v", e)
	}
	if e.Metadata["widthDiff"] != 200 || e.Metadata["heightDiff"] != 0 {
		t.Errorf("metadata = %v", e.Metadata)
	}
}

func TestViewportStreakResets(t *testing.T) {
	vp := &fakeViewport{outerW: 800, outerH: 900, innerW: 800, innerH: 600}
	f := newFixture(t, Host{Viewport: vp})
	f.m.Start()

	f.sched.Advance(2 * viewportInterval)
	vp.outerH = 600
	f.sched.Advance(viewportInterval)
	vp.outerH = 900
	f.sched.Advance(2 * viewportInterval)

	if f.bans.IsBanned() {
		t.Error("a closed sample should reset the streak")
	}

	f.m.HandleResize()
	if !f.bans.IsBanned() {
		t.Error("resize sample should complete the streak")
	}
}

func TestViewportFallsBackToInner(t *testing.T) {
	vp := &fakeViewport{innerW: 800, innerH: 600}
	f := newFixture(t, Host{Viewport: vp})
	f.m.Start()

	f.sched.Advance(10 * viewportInterval)
	if f.bans.IsBanned() || len(f.m.Log()) != 0 {
		t.Error("unknown outer size should never report")
	}
}

func TestBaitProbe(t *testing.T) {
	f := newFixture(t, Host{})
	f.m.Start()

	v := expvar.Get(BaitVar)
	if v == nil {
		t.Fatal("bait was not published")
	}
	if got := v.String(); got != `"forbidden"` {
		t.Errorf("bait value = %s", got)
	}

	entries := f.m.Log()
	if len(entries) != 1 {
		t.Fatalf("log length = %d, want 1", len(entries))
	}
	if entries[0].Reason != "Console inspection bait accessed" || entries[0].Severity != 90 {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].Metadata["source"] != "expvar-getter" {
		t.Errorf("metadata = %v", entries[0].Metadata)
	}
}

func TestBaitReleasedOnClose(t *testing.T) {
	f := newFixture(t, Host{})
	f.m.Start()
	f.m.Close()

	_ = expvar.Get(BaitVar).String()
	if len(f.m.Log()) != 0 {
		t.Error("closed monitor should not see the bait")
	}
}

func TestIsDevShortcut(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want bool
	}{
		{"f12", KeyEvent{Key: "F12"}, true},
		{"f12 lower", KeyEvent{Key: "f12"}, true},
		{"ctrl shift i", KeyEvent{Key: "i", Ctrl: true, Shift: true}, true},
		{"ctrl shift J", KeyEvent{Key: "J", Ctrl: true, Shift: true}, true},
		{"ctrl shift c", KeyEvent{Key: "c", Ctrl: true, Shift: true}, true},
		{"ctrl shift k", KeyEvent{Key: "k", Ctrl: true, Shift: true}, false},
		{"ctrl i", KeyEvent{Key: "i", Ctrl: true}, false},
		{"meta alt i", KeyEvent{Key: "i", Meta: true, Alt: true}, true},
		{"alt i", KeyEvent{Key: "i", Alt: true}, false},
		{"plain arrow", KeyEvent{Key: "left"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDevShortcut(tt.ev); got != tt.want {
				t.Errorf("isDevShortcut(%+v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestShortcutsProbe(t *testing.T) {
	f := newFixture(t, Host{})
	f.m.Start()

	if f.m.HandleKey(KeyEvent{Key: "left"}) {
		t.Error("ordinary keys must pass through")
	}
	if !f.m.HandleKey(KeyEvent{Key: "F12"}) {
		t.Error("F12 should be swallowed")
	}

	entries := f.m.Log()
	if len(entries) != 1 || entries[0].Reason != "Blocked developer shortcut" || entries[0].Severity != 90 {
		t.Fatalf("log = %+v", entries)
	}
	if entries[0].Metadata["key"] != "F12" {
		t.Errorf("metadata = %v", entries[0].Metadata)
	}
}

func TestContextMenuProbe(t *testing.T) {
	f := newFixture(t, Host{})
	f.m.Start()

	for i := 0; i < 5; i++ {
		f.m.HandleContextMenu()
	}

	entries := f.m.Log()
	if len(entries) != 3 {
		t.Fatalf("log length = %d, want 3", len(entries))
	}
	wantSeverities := []int{20, 40, 40}
	for i, e := range entries {
		if e.Severity != wantSeverities[i] {
			t.Errorf("entry %d severity = %d, want %d", i, e.Severity, wantSeverities[i])
		}
	}
	if entries[2].Metadata["attempts"] != 5 {
		t.Errorf("attempts = %v, want 5", entries[2].Metadata["attempts"])
	}
	if f.m.Score() != 100 || f.bans.IsBanned() {
		t.Errorf("score = %d banned = %v", f.m.Score(), f.bans.IsBanned())
	}
}

func TestReloadProbe(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		wantFlag bool
	}{
		{"within window", strconv.FormatInt(fixedNow.Add(-500*time.Millisecond).UnixMilli(), 10), true},
		{"outside window", strconv.FormatInt(fixedNow.Add(-5*time.Second).UnixMilli(), 10), false},
		{"missing", "", false},
		{"garbage", "soon", false},
		{"zero", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			if tt.stored != "" {
				_ = kv.Set(storage.KeyLastExit, tt.stored)
			}
			f := newFixture(t, Host{Store: kv, Viewport: &fakeViewport{}})
			f.m.Start()

			entries := f.m.Log()
			if !tt.wantFlag {
				if len(entries) != 0 {
					t.Errorf("unexpected entries %+v", entries)
				}
				return
			}
			if len(entries) != 1 || entries[0].Reason != "Rapid refresh detected" || entries[0].Severity != 65 {
				t.Fatalf("log = %+v", entries)
			}
			if entries[0].Metadata["elapsedMs"] != int64(500) {
				t.Errorf("elapsedMs = %v", entries[0].Metadata["elapsedMs"])
			}
		})
	}
}

func TestReloadProbeWritesExit(t *testing.T) {
	kv := storage.NewMemory()
	f := newFixture(t, Host{Store: kv})
	f.m.Start()
	f.m.Close()

	got, err := kv.Get(storage.KeyLastExit)
	if err != nil {
		t.Fatalf("exit timestamp not stored: %v", err)
	}
	if want := strconv.FormatInt(fixedNow.UnixMilli(), 10); got != want {
		t.Errorf("last exit = %q, want %q", got, want)
	}
}

func TestEntropyProbe(t *testing.T) {
	src := &fakeEntropy{}
	f := newFixture(t, Host{Entropy: src})
	f.m.Start()

	if !src.frozen {
		t.Error("entropy source should be frozen on start")
	}
	f.sched.Advance(3 * time.Second)
	if len(f.m.Log()) != 0 {
		t.Fatal("untouched source should not report")
	}

	src.generation++
	f.sched.Advance(time.Second)
	if !f.bans.IsBanned() {
		t.Fatal("replaced source should ban")
	}
	rec, _ := f.bans.Record()
	if rec.Reason != "Entropy source replaced" {
		t.Errorf("reason = %q", rec.Reason)
	}
}

func TestEntropyProbeFreezesRealSource(t *testing.T) {
	ref := core.NewEntropyRef(7)
	f := newFixture(t, Host{Entropy: ref})
	f.m.Start()

	if err := ref.Reseed(8); !errors.Is(err, core.ErrEntropyFrozen) {
		t.Errorf("Reseed error = %v, want ErrEntropyFrozen", err)
	}
	f.sched.Advance(5 * time.Second)
	if f.bans.IsBanned() {
		t.Error("frozen source cannot be replaced, so nothing should report")
	}
}

func TestInjectorsProbe(t *testing.T) {
	tests := []struct {
		name       string
		env        []string
		proc       string
		wantReason string
		wantSev    int
		wantMeta   map[string]any
	}{
		{
			name:       "preload",
			env:        []string{"HOME=/root", "LD_PRELOAD=/opt/hooks/libhook.so:/usr/lib/other.so"},
			wantReason: "Injection tool detected",
			wantSev:    135,
			wantMeta:   map[string]any{"handler": "LD_PRELOAD", "script": "libhook.so"},
		},
		{
			name:       "tracer",
			proc:       "Name:\tdodger\nTracerPid:\t4242\n",
			wantReason: "Injection tool detected",
			wantSev:    135,
			wantMeta:   map[string]any{"handler": "ptrace", "script": "pid 4242"},
		},
		{
			name:       "bridge",
			env:        []string{"FRIDA_TRANSPORT=tcp"},
			wantReason: "Injection bridge exposed",
			wantSev:    120,
			wantMeta:   map[string]any{"handler": "frida"},
		},
		{
			name: "clean",
			env:  []string{"HOME=/root", "LD_PRELOAD="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := Host{Environ: func() []string { return tt.env }}
			if tt.proc != "" {
				host.ProcStatus = func() ([]byte, error) { return []byte(tt.proc), nil }
			}
			f := newFixture(t, host, WithExtended(true))
			f.m.Start()
			f.sched.Advance(injectorsInterval)

			entries := f.m.Log()
			if tt.wantReason == "" {
				if len(entries) != 0 {
					t.Errorf("unexpected entries %+v", entries)
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("log length = %d, want 1", len(entries))
			}
			e := entries[0]
			if e.Reason != tt.wantReason || e.Severity != tt.wantSev {
				t.Errorf("entry = %+v", e)
			}
			for k, v := range tt.wantMeta {
				if e.Metadata[k] != v {
					t.Errorf("metadata[%s] = %v, want %v", k, e.Metadata[k], v)
				}
			}
			if !f.bans.IsBanned() {
				t.Error("injection tooling should ban")
			}
		})
	}
}

func TestInjectorsNeedExtended(t *testing.T) {
	f := newFixture(t, Host{Environ: func() []string { return []string{"LD_PRELOAD=/tmp/x.so"} }})
	f.m.Start()

	if f.bans.IsBanned() {
		t.Error("injectors probe should only arm in extended mode")
	}
}

func TestScriptsProbe(t *testing.T) {
	tests := []struct {
		name       string
		script     Script
		wantReason string
		wantSev    int
	}{
		{"data url", Script{Src: "data:text/javascript,alert(1)"}, "Injected script URL detected", 125},
		{"blob url", Script{Src: "BLOB:https://x/1"}, "Injected script URL detected", 125},
		{"tamper host", Script{Src: "https://cdn.tampermonkey.net/x.js"}, "Injected script URL detected", 125},
		{"plain url", Script{Src: "https://cdn.example.com/app.js"}, "", 0},
		{"void zero", Script{Text: "  (function(){ return void 0 })()  "}, "Inline runtime script injection", 125},
		{"gm api", Script{Text: strings.Repeat("x", 300) + " GM_setValue('a', 1)"}, "Inline runtime script injection", 125},
		{"short inline", Script{Text: "console.log('hi')"}, "Short inline script appended", 95},
		{"long inline", Script{Text: strings.Repeat("a", 200)}, "", 0},
		{"astral characters count twice", Script{Text: strings.Repeat("😀", 90)}, "", 0},
		{"short astral", Script{Text: strings.Repeat("😀", 70)}, "Short inline script appended", 95},
		{"accented text counts once", Script{Text: strings.Repeat("é", 150)}, "Short inline script appended", 95},
		{"blank", Script{Text: "   \n"}, "", 0},
		{"ignored", Script{Text: "void 0", Ignore: true}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeScripts{}
			f := newFixture(t, Host{Scripts: src}, WithExtended(true))
			f.m.Start()
			if src.fn == nil {
				t.Fatal("probe did not subscribe")
			}
			src.fn(tt.script)

			entries := f.m.Log()
			if tt.wantReason == "" {
				if len(entries) != 0 {
					t.Errorf("unexpected entries %+v", entries)
				}
				return
			}
			if len(entries) != 1 || entries[0].Reason != tt.wantReason || entries[0].Severity != tt.wantSev {
				t.Fatalf("log = %+v", entries)
			}
		})
	}
}

func TestScriptsSnippetTruncated(t *testing.T) {
	src := &fakeScripts{}
	f := newFixture(t, Host{Scripts: src}, WithExtended(true))
	f.m.Start()

	src.fn(Script{Text: "GM_" + strings.Repeat("z", 300)})

	entries := f.m.Log()
	if len(entries) != 1 {
		t.Fatalf("log length = %d", len(entries))
	}
	snippet, _ := entries[0].Metadata["snippet"].(string)
	if len(snippet) != snippetLen {
		t.Errorf("snippet length = %d, want %d", len(snippet), snippetLen)
	}
	if src.canceled != 1 {
		t.Errorf("subscription canceled %d times, want 1 after ban", src.canceled)
	}
}

func TestUTF16Length(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		n         int
		wantLen   int
		wantTrunc string
	}{
		{"ascii", "abcdef", 4, 6, "abcd"},
		{"latin", "ééé", 2, 3, "éé"},
		{"astral pair kept whole", "a😀b", 2, 4, "a"},
		{"astral fits", "a😀b", 3, 4, "a😀"},
		{"short input", "ok", 10, 2, "ok"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := utf16Len(tc.in); got != tc.wantLen {
				t.Errorf("utf16Len(%q) = %d, want %d", tc.in, got, tc.wantLen)
			}
			if got := truncate(tc.in, tc.n); got != tc.wantTrunc {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.wantTrunc)
			}
		})
	}
}

func TestEvaluatorTrap(t *testing.T) {
	f := newFixture(t, Host{}, WithExtended(true))
	f.m.Start()

	calls := 0
	inner := EvaluatorFunc(func(input string) (string, error) {
		calls++
		return "ok:" + input, nil
	})
	ev := f.m.WrapEvaluator(inner, "console")
	if again := f.m.WrapEvaluator(ev, "console"); again != ev {
		t.Error("wrapping twice should return the same trap")
	}

	long := strings.Repeat("q", 100)
	out, err := ev.Eval(long)
	if err != nil || out != "ok:"+long {
		t.Errorf("Eval = %q, %v", out, err)
	}
	if _, err := ev.Eval("score 5"); err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Errorf("inner called %d times, want 2", calls)
	}
	entries := f.m.Log()
	if len(entries) != 1 {
		t.Fatalf("log length = %d, want only the first call flagged", len(entries))
	}
	e := entries[0]
	if e.Reason != "Dynamic evaluation invoked" || e.Severity != 105 {
		t.Errorf("entry = %+v", e)
	}
	if e.Metadata["label"] != "console" || e.Metadata["preview"] != strings.Repeat("q", previewLen) {
		t.Errorf("metadata = %v", e.Metadata)
	}
}

func TestEvaluatorUntrappedWithoutExtended(t *testing.T) {
	f := newFixture(t, Host{})
	f.m.Start()

	ev := f.m.WrapEvaluator(EvaluatorFunc(func(string) (string, error) { return "", nil }), "console")
	if _, ok := ev.(*trappedEvaluator); ok {
		t.Error("evaluator should not be trapped")
	}
	if _, err := ev.Eval("help"); err != nil {
		t.Fatal(err)
	}
	if len(f.m.Log()) != 0 {
		t.Error("untrapped evaluator should not report")
	}
}

func TestProbesOrder(t *testing.T) {
	list := Probes()
	if len(list) == 0 || list[0].Name != "reload" {
		t.Fatalf("first probe = %+v, want reload", list)
	}

	want := map[string]bool{
		"reload": false, "viewport": false, "bait": false, "shortcuts": false,
		"contextmenu": false, "entropy": false, "injectors": true, "scripts": true,
		"evaluators": true,
	}
	for _, info := range list {
		extended, ok := want[info.Name]
		if !ok {
			t.Errorf("unexpected probe %q", info.Name)
			continue
		}
		if info.Extended != extended {
			t.Errorf("probe %q extended = %v, want %v", info.Name, info.Extended, extended)
		}
		delete(want, info.Name)
	}
	for name := range want {
		t.Errorf("probe %q not registered", name)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	Register(ProbeInfo{Name: "reload"}, func() Probe { return &reloadProbe{} })
}

func TestCreateUnknownProbe(t *testing.T) {
	if _, err := Create("telepathy"); err == nil {
		t.Error("expected error for unknown probe")
	}
}
