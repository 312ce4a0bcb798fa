package sentinel

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// IgnoreDirective on the first line of a script file marks it as trusted.
const IgnoreDirective = "rd-ignore"

// DefaultScriptPoll is how often a DirSource rescans its directory.
const DefaultScriptPoll = time.Second

// DirSource reports files added to a directory after Subscribe as inserted
// scripts. A file ending in .url holds a script source address; any other
// file holds inline script text.
type DirSource struct {
	dir      string
	interval time.Duration
	sched    Scheduler
	logger   *log.Logger
}

// NewDirSource creates a source polling dir with sched.
func NewDirSource(dir string, sched Scheduler) *DirSource {
	if sched == nil {
		sched = TickerScheduler{}
	}
	return &DirSource{
		dir:      dir,
		interval: DefaultScriptPoll,
		sched:    sched,
		logger:   log.WithPrefix("sentinel"),
	}
}

// Subscribe calls fn for each file that appears after this call.
func (d *DirSource) Subscribe(fn func(Script)) func() {
	seen := make(map[string]struct{})
	for _, name := range d.list() {
		seen[name] = struct{}{}
	}
	task := d.sched.Every(d.interval, func() {
		for _, name := range d.list() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			s, err := LoadScript(filepath.Join(d.dir, name))
			if err != nil {
				d.logger.Warn("failed to read inserted script", "file", name, "error", err)
				continue
			}
			fn(s)
		}
	})
	return task.Stop
}

func (d *DirSource) list() []string {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// LoadScript reads one script file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	text := string(data)
	s := Script{Name: filepath.Base(path)}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(first) == IgnoreDirective {
		s.Ignore = true
		text = rest
	}
	if filepath.Ext(path) == ".url" {
		s.Src = strings.TrimSpace(text)
	} else {
		s.Text = text
	}
	return s, nil
}
