// Package views renders the demo site's HTML as templ components.
//
// Components are written with templ.ComponentFunc so the package needs no
// code generation step. All dynamic text and every interpolated attribute
// value goes through templ.EscapeString.
package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/Suhaibinator/hxdemo/internal/demo"
	"github.com/Suhaibinator/hxdemo/pkg/fragment"
	"github.com/a-h/templ"
)

// New returns the views used by the demo handlers.
func New() demo.Views {
	return demo.Views{
		Navbar:       Navbar,
		Home:         Home,
		Features:     Features,
		Demo:         Demo,
		Counter:      Counter,
		LanguageList: LanguageList,
		TaskList:     TaskList,
		ChatMessages: ChatMessages,
	}
}

// htmlWriter collects the first write error so components read linearly.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// markupf writes format as trusted markup. Every argument is formatted with
// fmt.Sprint and escaped, so format should only use %s verbs.
func (h *htmlWriter) markupf(format string, args ...any) {
	if h.err != nil {
		return
	}
	escaped := make([]any, len(args))
	for i, arg := range args {
		escaped[i] = templ.EscapeString(fmt.Sprint(arg))
	}
	_, h.err = fmt.Fprintf(h.w, format, escaped...)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

var navLabels = map[demo.NavSelected]string{
	demo.NavHome:        "Home",
	demo.NavFeatures:    "Features",
	demo.NavDemo:        "Demo",
	demo.NavPerformance: "Performance",
	demo.NavQuickstart:  "Quickstart",
}

var navHrefs = map[demo.NavSelected]string{
	demo.NavHome:        "/",
	demo.NavFeatures:    "/features",
	demo.NavDemo:        "/demo",
	demo.NavPerformance: "/#performance",
	demo.NavQuickstart:  "/quickstart",
}

// Navbar renders the navigation bar with the selected entry highlighted.
// As an OOB fragment it carries hx-swap-oob so the client replaces #navbar.
func Navbar(c fragment.Context[demo.NavbarData]) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<nav id="navbar" class="navbar"`)
		if c.Data.OOB {
			h.raw(` hx-swap-oob="true"`)
		}
		h.raw(`><ul>`)
		for _, item := range demo.NavItems {
			class := "nav-link"
			if item == c.Data.Selected {
				class += " nav-link-selected"
			}
			h.markupf(`<li><a class="%s" href="%s" hx-get="%s" hx-target="#content" hx-push-url="true">`,
				class, navHrefs[item], navHrefs[item])
			h.text(navLabels[item])
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></nav>`)
	})
}

func page(id, title string, body func(ctx context.Context, h *htmlWriter)) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.markupf(`<main id="content" data-page="%s">`, id)
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
		body(ctx, h)
		h.raw(`</main>`)
	})
}

// Home renders the landing page.
func Home(c fragment.Context[demo.PageData]) templ.Component {
	return page("home", "Server-rendered components, one round trip", func(ctx context.Context, h *htmlWriter) {
		h.raw(`<p>Pages and fragments are rendered on the server and swapped in place with HTMX.</p>`)
		h.raw(`<a class="button" href="/demo" hx-get="/demo" hx-target="#content" hx-push-url="true">Try the demo</a>`)
	})
}

var featureList = []struct{ title, text string }{
	{"Typed routes", "Path parameters are declared with a type and coerced before the handler runs."},
	{"Interceptors", "Timing, authorization and host checks wrap every request in a fixed order."},
	{"Out-of-band fragments", "One response updates the main region and the navbar together."},
}

// Features renders the features page.
func Features(c fragment.Context[demo.PageData]) templ.Component {
	return page("features", "Features", func(ctx context.Context, h *htmlWriter) {
		h.raw(`<ul class="features">`)
		for _, f := range featureList {
			h.raw(`<li><h2>`)
			h.text(f.title)
			h.raw(`</h2><p>`)
			h.text(f.text)
			h.raw(`</p></li>`)
		}
		h.raw(`</ul>`)
	})
}

// Demo renders the interactive demo page.
func Demo(c fragment.Context[demo.DemoPageData]) templ.Component {
	d := c.Data
	return page("demo", "Demo", func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="demo-counter"><h2>Counter</h2>`)
		h.component(ctx, Counter(fragment.NewContext(c.Request, demo.CounterData{Value: d.Value})))
		h.raw(`</section>`)

		h.raw(`<section class="demo-search"><h2>Language search</h2>`)
		h.raw(`<input type="search" name="query" placeholder="Search languages" hx-get="/demo/languages/search" hx-trigger="input changed delay:200ms" hx-target="#language-list"/>`)
		h.component(ctx, LanguageList(fragment.NewContext(c.Request, demo.LanguageListData{
			Searching: d.Searching,
			Languages: d.Languages,
		})))
		h.raw(`</section>`)

		h.raw(`<section class="demo-tasks"><h2>Tasks</h2>`)
		h.raw(`<form hx-post="/demo/add-task" hx-target="#task-list" hx-swap="beforeend"><input name="task" placeholder="New task"/><button type="submit">Add</button></form>`)
		h.raw(`<ul id="task-list">`)
		h.component(ctx, TaskList(fragment.NewContext(c.Request, demo.TaskListData{Tasks: d.Tasks})))
		h.raw(`</ul></section>`)

		h.raw(`<section class="demo-chat"><h2>Chat</h2><div id="chat-messages">`)
		h.component(ctx, ChatMessages(fragment.NewContext(c.Request, demo.ChatData{Messages: d.Messages})))
		h.raw(`</div>`)
		h.raw(`<form hx-post="/demo/chat" hx-target="#chat-messages" hx-swap="beforeend"><input name="message" placeholder="Say something"/><button type="submit">Send</button></form>`)
		h.raw(`</section>`)
	})
}

// Counter renders the counter with its three buttons. Each button posts the
// current value to the direction's route.
func Counter(c fragment.Context[demo.CounterData]) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.markupf(`<div id="counter" class="counter"><span class="counter-value">%s</span>`, c.Data.Value)
		for _, dir := range []demo.Direction{demo.Decrement, demo.Reset, demo.Increment} {
			h.markupf(`<button hx-post="/demo/counter/%s" hx-vals='{"value": "%s"}' hx-target="#counter" hx-swap="outerHTML">%s</button>`,
				dir, c.Data.Value, dir)
		}
		h.raw(`</div>`)
	})
}

// LanguageList renders search results. The idle state shows a hint instead.
func LanguageList(c fragment.Context[demo.LanguageListData]) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="language-list">`)
		switch {
		case !c.Data.Searching:
			h.raw(`<p class="hint">Start typing to search.</p>`)
		case len(c.Data.Languages) == 0:
			h.raw(`<p class="empty">No languages found.</p>`)
		default:
			h.raw(`<ul>`)
			for _, l := range c.Data.Languages {
				h.raw(`<li class="language">`)
				h.markupf(`<span class="badge %s %s">`, l.TextColour, l.BgColour)
				h.text(l.Abbrev)
				h.raw(`</span><strong>`)
				h.text(l.Name)
				h.raw(`</strong><span class="category">`)
				h.text(l.Category)
				h.raw(`</span><p>`)
				h.text(l.Description)
				h.raw(`</p></li>`)
			}
			h.raw(`</ul>`)
		}
		h.raw(`</div>`)
	})
}

// TaskList renders task items, each with a delete button.
func TaskList(c fragment.Context[demo.TaskListData]) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for _, task := range c.Data.Tasks {
			h.raw(`<li class="task">`)
			h.text(task)
			h.markupf(`<button hx-delete="/demo/task/delete?task=%s" hx-target="closest li" hx-swap="outerHTML">Delete</button>`,
				url.QueryEscape(task))
			h.raw(`</li>`)
		}
	})
}

// ChatMessages renders chat lines, aligned by sender.
func ChatMessages(c fragment.Context[demo.ChatData]) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for _, m := range c.Data.Messages {
			h.markupf(`<div class="chat-message chat-%s" data-sender="%s">`, m.Sender, m.Sender)
			h.raw(`<p>`)
			h.text(m.Text)
			h.raw(`</p>`)
			h.markupf(`<time datetime="%s">%s</time>`, m.Time.Format(time.RFC3339), m.Time.Format("15:04"))
			h.raw(`</div>`)
		}
	})
}
