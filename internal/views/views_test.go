package views

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Suhaibinator/hxdemo/internal/demo"
	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/Suhaibinator/hxdemo/pkg/fragment"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestNavbar(t *testing.T) {
	inline := render(t, Navbar(fragment.NewContext[demo.NavbarData](nil, demo.NavbarData{Selected: demo.NavDemo})))
	assert.Contains(t, inline, `id="navbar"`)
	assert.NotContains(t, inline, "hx-swap-oob")
	assert.Contains(t, inline, `class="nav-link nav-link-selected" href="/demo"`)
	assert.Equal(t, 1, strings.Count(inline, "nav-link-selected"))

	oob := render(t, Navbar(fragment.NewContext[demo.NavbarData](nil, demo.NavbarData{Selected: demo.NavHome, OOB: true})))
	assert.Contains(t, oob, `hx-swap-oob="true"`)
}

func TestTextIsEscaped(t *testing.T) {
	out := render(t, ChatMessages(fragment.NewContext[demo.ChatData](nil, demo.ChatData{
		Messages: []demo.Message{{Text: `<script>alert("x")</script>`, Sender: demo.SenderMe, Time: time.Unix(0, 0).UTC()}},
	})))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `data-sender="me"`)

	tasks := render(t, TaskList(fragment.NewContext[demo.TaskListData](nil, demo.TaskListData{Tasks: []string{"a & b"}})))
	assert.Contains(t, tasks, "a &amp; b")
	assert.Contains(t, tasks, "task=a+%26+b")
}

func TestAttributesAreEscaped(t *testing.T) {
	out := render(t, ChatMessages(fragment.NewContext[demo.ChatData](nil, demo.ChatData{
		Messages: []demo.Message{{Text: "hi", Sender: demo.Sender(`x" onclick="alert(1)`), Time: time.Unix(0, 0).UTC()}},
	})))
	assert.NotContains(t, out, `onclick="alert`)
	assert.Contains(t, out, `data-sender="x&#34; onclick=&#34;alert(1)"`)

	out = render(t, LanguageList(fragment.NewContext[demo.LanguageListData](nil, demo.LanguageListData{
		Searching: true,
		Languages: []demo.Language{{Name: "Go", TextColour: `"><b>`, BgColour: "bg"}},
	})))
	assert.NotContains(t, out, "<b>")
}

func TestCounter(t *testing.T) {
	out := render(t, Counter(fragment.NewContext[demo.CounterData](nil, demo.CounterData{Value: -4})))

	assert.Contains(t, out, `<span class="counter-value">-4</span>`)
	for _, dir := range []string{"increment", "decrement", "reset"} {
		assert.Contains(t, out, `hx-post="/demo/counter/`+dir+`"`)
	}
}

func TestLanguageListStates(t *testing.T) {
	idle := render(t, LanguageList(fragment.NewContext[demo.LanguageListData](nil, demo.LanguageListData{})))
	assert.Contains(t, idle, "Start typing")

	empty := render(t, LanguageList(fragment.NewContext[demo.LanguageListData](nil, demo.LanguageListData{Searching: true})))
	assert.Contains(t, empty, "No languages found")

	found := render(t, LanguageList(fragment.NewContext[demo.LanguageListData](nil, demo.LanguageListData{
		Searching: true,
		Languages: demo.SearchLanguages("z"),
	})))
	assert.Contains(t, found, "<strong>Zig</strong>")
}

func TestPagesWithOOBNavbar(t *testing.T) {
	req := common.NewRequest(context.Background(), http.MethodGet, "/features", nil, nil, nil)
	nav := Navbar(fragment.NewContext(req, demo.NavbarData{Selected: demo.NavFeatures, OOB: true}))

	body, err := fragment.Render(Features, fragment.NewContext(req, demo.PageData{Selected: demo.NavFeatures}, nav))
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.HasPrefix(out, `<main id="content" data-page="features">`))
	assert.True(t, strings.HasSuffix(out, `</nav>`))
	assert.Less(t, strings.Index(out, "</main>"), strings.Index(out, `<nav id="navbar"`))
}

func TestDemoPage(t *testing.T) {
	out := render(t, Demo(fragment.NewContext[demo.DemoPageData](nil, demo.DemoPageData{
		Selected: demo.NavDemo,
		Tasks:    demo.DefaultTasks(),
		Messages: demo.DefaultTranscript(time.Now()),
	})))

	assert.Contains(t, out, `<span class="counter-value">0</span>`)
	assert.Contains(t, out, "Try HTMX integration")
	assert.Contains(t, out, "This is amazing!")
	assert.Contains(t, out, `id="language-list"`)
}

func TestNewWiresEveryView(t *testing.T) {
	v := New()
	assert.NotNil(t, v.Navbar)
	assert.NotNil(t, v.Home)
	assert.NotNil(t, v.Features)
	assert.NotNil(t, v.Demo)
	assert.NotNil(t, v.Counter)
	assert.NotNil(t, v.LanguageList)
	assert.NotNil(t, v.TaskList)
	assert.NotNil(t, v.ChatMessages)
}
