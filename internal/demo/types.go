package demo

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Direction is a counter operation. The set is closed: the only values are
// Increment, Decrement and Reset, obtained from ParseDirection.
type Direction interface {
	// Apply returns the counter value after the operation, or
	// ErrCounterOverflow when the result does not fit in an int.
	Apply(value int) (int, error)
	String() string

	direction()
}

type (
	increment struct{}
	decrement struct{}
	reset     struct{}
)

// The counter directions.
var (
	Increment Direction = increment{}
	Decrement Direction = decrement{}
	Reset     Direction = reset{}
)

// ErrCounterOverflow is returned when a counter step would wrap around.
var ErrCounterOverflow = errors.New("counter out of range")

func (increment) Apply(v int) (int, error) {
	if v == math.MaxInt {
		return 0, ErrCounterOverflow
	}
	return v + 1, nil
}

func (decrement) Apply(v int) (int, error) {
	if v == math.MinInt {
		return 0, ErrCounterOverflow
	}
	return v - 1, nil
}

func (reset) Apply(int) (int, error) { return 0, nil }

func (increment) String() string { return "increment" }
func (decrement) String() string { return "decrement" }
func (reset) String() string     { return "reset" }

func (increment) direction() {}
func (decrement) direction() {}
func (reset) direction()     {}

// ParseDirection maps a route value to its Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "increment":
		return Increment, true
	case "decrement":
		return Decrement, true
	case "reset":
		return Reset, true
	}
	return nil, false
}

// Sender is the author of a chat message.
type Sender string

const (
	SenderMe   Sender = "me"
	SenderThem Sender = "them"
)

// NavSelected is the highlighted navbar entry.
type NavSelected string

const (
	NavHome        NavSelected = "home"
	NavFeatures    NavSelected = "features"
	NavDemo        NavSelected = "demo"
	NavPerformance NavSelected = "performance"
	NavQuickstart  NavSelected = "quickstart"
)

// NavItems lists the navbar entries in display order.
var NavItems = []NavSelected{NavHome, NavFeatures, NavDemo, NavPerformance, NavQuickstart}

// Message is one chat line.
type Message struct {
	Text   string
	Sender Sender
	Time   time.Time
}

// Language is an entry of the searchable language list.
type Language struct {
	Name        string
	Abbrev      string
	Description string
	Category    string
	TextColour  string
	BgColour    string
}

// Languages is the fixed search corpus. Results keep this order.
var Languages = []Language{
	{"Python", "Py", "High-level programming language", "Popular", "text-volt-yellow", "bg-volt-yellow/20"},
	{"JavaScript", "JS", "Dynamic web programming language", "Web", "text-blue-400", "bg-blue-400/20"},
	{"TypeScript", "TS", "Typed superset of JavaScript", "Web", "text-blue-500", "bg-blue-500/20"},
	{"Rust", "Rs", "Systems programming language", "Systems", "text-orange-400", "bg-orange-400/20"},
	{"Go", "Go", "Google's systems language", "Systems", "text-cyan-400", "bg-cyan-400/20"},
	{"Java", "Jv", "Enterprise programming language", "Enterprise", "text-red-400", "bg-red-400/20"},
	{"C++", "C+", "Low-level systems language", "Systems", "text-purple-400", "bg-purple-400/20"},
	{"C#", "C#", "Microsoft's .NET language", "Enterprise", "text-green-400", "bg-green-400/20"},
	{"Zig", "Zg", "Modern systems programming", "Systems", "text-volt-yellow", "bg-volt-yellow/20"},
	{"Swift", "Sw", "Apple's iOS development language", "Mobile", "text-orange-500", "bg-orange-500/20"},
	{"Kotlin", "Kt", "Modern Android development", "Mobile", "text-purple-500", "bg-purple-500/20"},
	{"Ruby", "Rb", "Developer-friendly scripting", "Web", "text-red-500", "bg-red-500/20"},
	{"PHP", "Php", "Server-side web language", "Web", "text-indigo-400", "bg-indigo-400/20"},
	{"Dart", "Dt", "Google's Flutter language", "Mobile", "text-blue-600", "bg-blue-600/20"},
	{"Elixir", "Ex", "Functional concurrent language", "Functional", "text-purple-600", "bg-purple-600/20"},
	{"Haskell", "Hs", "Pure functional language", "Functional", "text-green-500", "bg-green-500/20"},
	{"Clojure", "Cl", "Modern Lisp for JVM", "Functional", "text-cyan-500", "bg-cyan-500/20"},
	{"Scala", "Sc", "Functional + OOP on JVM", "Enterprise", "text-red-600", "bg-red-600/20"},
	{"R", "R", "Statistical computing language", "Data", "text-blue-700", "bg-blue-700/20"},
	{"Julia", "Jl", "High-performance scientific computing", "Data", "text-purple-700", "bg-purple-700/20"},
}

// MaxSearchResults caps SearchLanguages.
const MaxSearchResults = 3

// SearchLanguages returns the languages whose lower-cased name contains the
// lower-cased first character of query, at most MaxSearchResults of them.
// Only the first character is used. An empty query returns nil.
func SearchLanguages(query string) []Language {
	first, size := utf8.DecodeRuneInString(query)
	if size == 0 {
		return nil
	}
	needle := string(unicode.ToLower(first))

	var results []Language
	for _, lang := range Languages {
		if strings.Contains(strings.ToLower(lang.Name), needle) {
			results = append(results, lang)
			if len(results) == MaxSearchResults {
				break
			}
		}
	}
	return results
}

// DefaultTasks seeds the task store.
func DefaultTasks() []string {
	return []string{
		"Learn about Volt framework",
		"Try HTMX integration",
		"Add a new task!",
	}
}

// DefaultTranscript seeds the chat store with messages ending at now.
func DefaultTranscript(now time.Time) []Message {
	return []Message{
		{Text: "This is amazing!", Sender: SenderMe, Time: now.Add(-2 * time.Minute)},
		{Text: "Glad you like it! Volt makes real-time features super easy.", Sender: SenderThem, Time: now.Add(-time.Minute)},
		{Text: "The performance is incredible 🚀", Sender: SenderMe, Time: now},
	}
}
