// Package demo implements the demo site's pages and interactive fragments:
// a counter, a language search, a task list and a chat.
package demo

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/Suhaibinator/hxdemo/pkg/fragment"
	"github.com/Suhaibinator/hxdemo/pkg/router"
	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// NavbarData is the input of the navbar view. OOB marks a navbar sent as an
// out-of-band fragment.
type NavbarData struct {
	Selected NavSelected
	OOB      bool
}

// PageData is the input of the simple pages.
type PageData struct {
	Selected NavSelected
}

// DemoPageData is the input of the demo page.
type DemoPageData struct {
	Selected  NavSelected
	Tasks     []string
	Searching bool
	Languages []Language
	Value     int
	Messages  []Message
}

// CounterData is the input of the counter fragment.
type CounterData struct {
	Value int
}

// LanguageListData is the input of the search results fragment.
type LanguageListData struct {
	Searching bool
	Languages []Language
}

// TaskListData is the input of the task list fragment.
type TaskListData struct {
	Tasks []string
}

// ChatData is the input of the chat messages fragment.
type ChatData struct {
	Messages []Message
}

// Views are the components the handlers render.
type Views struct {
	Navbar       fragment.View[NavbarData]
	Home         fragment.View[PageData]
	Features     fragment.View[PageData]
	Demo         fragment.View[DemoPageData]
	Counter      fragment.View[CounterData]
	LanguageList fragment.View[LanguageListData]
	TaskList     fragment.View[TaskListData]
	ChatMessages fragment.View[ChatData]
}

// Handlers serves the demo routes.
type Handlers struct {
	views  Views
	tasks  *TaskStore
	chat   *ChatStore
	logger *zap.Logger
	now    func() time.Time
}

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger sets the logger used for handler diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock replaces time.Now for chat timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		h.now = now
	}
}

// NewHandlers creates the demo handlers over the given views and stores.
func NewHandlers(views Views, tasks *TaskStore, chat *ChatStore, opts ...Option) *Handlers {
	h := &Handlers{
		views:  views,
		tasks:  tasks,
		chat:   chat,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Pages returns the top-level page routes.
func (h *Handlers) Pages() []router.RouteConfig {
	return []router.RouteConfig{
		{Path: "/", Methods: []string{http.MethodGet}, Handler: h.handle(h.Home)},
		{Path: "/features", Methods: []string{http.MethodGet}, Handler: h.handle(h.Features)},
		{Path: "/quickstart", Methods: []string{http.MethodGet}, Handler: redirectHome},
		{Path: "/home", Methods: []string{http.MethodGet}, Handler: redirectHome},
	}
}

// DemoRoutes returns the routes of the demo section, relative to /demo.
func (h *Handlers) DemoRoutes() router.SubRouterConfig {
	return router.SubRouterConfig{
		PathPrefix: "/demo",
		Routes: []router.RouteConfig{
			{Path: "", Methods: []string{http.MethodGet}, Handler: h.handle(h.Demo)},
			{Path: "/counter/{direction:str}", Methods: []string{http.MethodPost}, Handler: h.handle(h.Counter)},
			{Path: "/languages/search", Methods: []string{http.MethodGet}, Handler: h.handle(h.SearchLanguages)},
			{Path: "/add-task", Methods: []string{http.MethodPost}, Handler: h.handle(h.AddTask)},
			{Path: "/task/delete", Methods: []string{http.MethodDelete}, Handler: h.handle(h.DeleteTask)},
			{Path: "/chat", Methods: []string{http.MethodPost}, Handler: h.handle(h.Chat)},
		},
	}
}

// Register registers every demo route on r.
func (h *Handlers) Register(r *router.Router) error {
	for _, rc := range h.Pages() {
		if err := r.RegisterRoute(rc); err != nil {
			return err
		}
	}
	return r.RegisterSubRouter(h.DemoRoutes())
}

func (h *Handlers) handle(fn router.ErrorHandlerFunc) common.HandlerFunc {
	return router.HandleErrors(h.logger, fn)
}

func redirectHome(*common.Request) *common.Response {
	return common.Redirect("/")
}

// navbar is the OOB navbar showing selected.
func (h *Handlers) navbar(req *common.Request, selected NavSelected) templ.Component {
	return h.views.Navbar(fragment.NewContext(req, NavbarData{Selected: selected, OOB: true}))
}

// Home renders the home page.
func (h *Handlers) Home(req *common.Request) (*common.Response, error) {
	return fragment.Respond(h.views.Home,
		fragment.NewContext(req, PageData{Selected: NavHome}, h.navbar(req, NavHome)))
}

// Features renders the features page.
func (h *Handlers) Features(req *common.Request) (*common.Response, error) {
	return fragment.Respond(h.views.Features,
		fragment.NewContext(req, PageData{Selected: NavFeatures}, h.navbar(req, NavFeatures)))
}

// Demo renders the demo page with the current tasks and transcript.
func (h *Handlers) Demo(req *common.Request) (*common.Response, error) {
	data := DemoPageData{
		Selected: NavDemo,
		Tasks:    h.tasks.List(),
		Messages: h.chat.List(),
	}
	return fragment.Respond(h.views.Demo, fragment.NewContext(req, data, h.navbar(req, NavDemo)))
}

// Counter applies the direction in the route to the submitted value.
func (h *Handlers) Counter(req *common.Request) (*common.Response, error) {
	raw, ok := req.Form("value")
	if !ok {
		return nil, router.NewHTTPError(http.StatusBadRequest, "value is required")
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, router.NewHTTPError(http.StatusBadRequest, "value must be an integer")
	}

	param, _ := req.Param("direction")
	dir, ok := ParseDirection(param)
	if !ok {
		return nil, router.NewHTTPError(http.StatusNotFound, "unknown direction")
	}

	next, err := dir.Apply(value)
	if err != nil {
		return nil, router.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return fragment.Respond(h.views.Counter,
		fragment.NewContext(req, CounterData{Value: next}))
}

// SearchLanguages lists languages matching the query. An empty query renders
// the idle state.
func (h *Handlers) SearchLanguages(req *common.Request) (*common.Response, error) {
	query, _ := req.Query("query")
	data := LanguageListData{}
	if query != "" {
		data.Searching = true
		data.Languages = SearchLanguages(query)
	}
	return fragment.Respond(h.views.LanguageList, fragment.NewContext(req, data))
}

// AddTask stores the submitted tasks and renders them.
func (h *Handlers) AddTask(req *common.Request) (*common.Response, error) {
	var tasks []string
	for _, t := range req.FormValues("task") {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return nil, router.NewHTTPError(http.StatusBadRequest, "task is required")
	}

	h.tasks.Add(tasks...)

	return fragment.Respond(h.views.TaskList, fragment.NewContext(req, TaskListData{Tasks: tasks}))
}

// DeleteTask removes the named task, if any. It always succeeds.
func (h *Handlers) DeleteTask(req *common.Request) (*common.Response, error) {
	task, ok := req.Query("task")
	if !ok {
		task, ok = req.Form("task")
	}
	if ok && !h.tasks.Remove(task) {
		h.logger.Debug("Task to delete not found", zap.String("task", task))
	}
	return common.Status(http.StatusOK), nil
}

// Chat appends one message from the user and renders it.
func (h *Handlers) Chat(req *common.Request) (*common.Response, error) {
	values := req.FormValues("message")
	if len(values) != 1 {
		return nil, router.NewHTTPError(http.StatusBadRequest,
			"expected exactly one message, got "+strconv.Itoa(len(values)))
	}

	msg := Message{Text: values[0], Sender: SenderMe, Time: h.now()}
	h.chat.Append(msg)

	return fragment.Respond(h.views.ChatMessages,
		fragment.NewContext(req, ChatData{Messages: []Message{msg}}))
}
