// Package archive keeps the list of words that have been dropped onto the
// field, newest first, with an optional one-line description per entry.
package archive

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dotdrop/internal/dots"
)

var ErrEmptyWord = errors.New("archive: empty word")

// AllMonths is the filter value that disables month filtering.
const AllMonths = "all"

// DateLabel is the layout used for group headings and entry dates.
const DateLabel = "Jan 02"

// MonthChips lists the filter values offered by the front-ends.
var MonthChips = []string{
	AllMonths, "Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

type Entry struct {
	ID    dots.ID   `yaml:"id"`
	Word  string    `yaml:"word"`
	Line  string    `yaml:"line"`
	Date  time.Time `yaml:"date"`
	Count int       `yaml:"count"`
}

func (e Entry) Label() string { return e.Date.Format(DateLabel) }

type Group struct {
	Label   string
	Entries []Entry
}

type Archive struct {
	entries []Entry
	now     func() time.Time
	seq     uint64
}

// New returns an empty archive. A nil clock uses time.Now.
func New(now func() time.Time) *Archive {
	if now == nil {
		now = time.Now
	}
	return &Archive{now: now}
}

// Add records a new word at the front of the archive. Count is one more than
// the highest count already recorded for the same word.
func (a *Archive) Add(word string) (Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Entry{}, ErrEmptyWord
	}

	count := 1
	for _, e := range a.entries {
		if e.Word == word && e.Count >= count {
			count = e.Count + 1
		}
	}

	now := a.now()
	a.seq++
	e := Entry{
		ID:    dots.ID(fmt.Sprintf("%d-%d", now.UnixMilli(), a.seq)),
		Word:  word,
		Date:  now,
		Count: count,
	}
	a.entries = append([]Entry{e}, a.entries...)
	return e, nil
}

// Describe replaces the line of an existing entry and stamps it with the
// current date. The count is unchanged.
func (a *Archive) Describe(id dots.ID, line string) bool {
	i := a.index(id)
	if i < 0 {
		return false
	}
	a.entries[i].Line = line
	a.entries[i].Date = a.now()
	return true
}

func (a *Archive) Remove(id dots.ID) bool {
	i := a.index(id)
	if i < 0 {
		return false
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	return true
}

func (a *Archive) Get(id dots.ID) (Entry, bool) {
	i := a.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Entries returns a copy, newest first.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *Archive) Len() int { return len(a.entries) }

// List filters by month abbreviation (case-insensitive, "all" for none) and
// groups the result by day label, newest day first. Entries keep their
// archive order within a group.
func (a *Archive) List(month string) []Group {
	byLabel := make(map[string]int)
	var groups []Group
	for _, e := range a.entries {
		if !matchMonth(e.Date, month) {
			continue
		}
		label := e.Label()
		i, ok := byLabel[label]
		if !ok {
			i = len(groups)
			byLabel[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Entries[0].Date.After(groups[j].Entries[0].Date)
	})
	return groups
}

func matchMonth(t time.Time, month string) bool {
	if month == "" || strings.EqualFold(month, AllMonths) {
		return true
	}
	return strings.EqualFold(t.Format("Jan"), month)
}

func (a *Archive) index(id dots.ID) int {
	for i, e := range a.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

// Save writes the archive as YAML.
func (a *Archive) Save(path string) error {
	data, err := yaml.Marshal(file{Entries: a.entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load replaces the archive contents with the entries stored at path.
// A missing file leaves the archive empty.
func (a *Archive) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			a.entries = nil
			return nil
		}
		return err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("archive: %s: %w", path, err)
	}
	a.entries = f.Entries
	return nil
}
