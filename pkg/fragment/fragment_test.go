package fragment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/Suhaibinator/hxdemo/pkg/common"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed returns a component that always renders the same markup.
func fixed(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

func failing(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errors.New(msg)
	})
}

func TestComposeOrder(t *testing.T) {
	p := []byte(`<main id="page">P</main>`)
	f1 := []byte(`<nav id="navbar" hx-swap-oob="true">F1</nav>`)
	f2 := []byte(`<div id="toast" hx-swap-oob="true">F2</div>`)

	body := Compose(p, f1, f2)

	assert.Equal(t, string(p)+string(f1)+string(f2), string(body))
	pi, i1, i2 := bytes.Index(body, p), bytes.Index(body, f1), bytes.Index(body, f2)
	assert.True(t, pi < i1 && i1 < i2)
}

func TestComposeWithoutOOBReturnsPrimary(t *testing.T) {
	p := []byte("<p>only</p>")

	body := Compose(p)

	// Same backing array, no copy
	require.Len(t, body, len(p))
	assert.Same(t, &p[0], &body[0])
}

func TestComposeDoesNotAliasPrimary(t *testing.T) {
	p := make([]byte, 3, 64)
	copy(p, "abc")

	body := Compose(p, []byte("d"))
	body[0] = 'X'

	assert.Equal(t, "abc", string(p))
}

func TestRender(t *testing.T) {
	view := View[int](func(c Context[int]) templ.Component {
		return fixed("<span>" + string(rune('0'+c.Data)) + "</span>")
	})

	req := common.NewRequest(context.Background(), http.MethodGet, "/", nil, nil, nil)
	body, err := Render(view, NewContext(req, 7, fixed("<nav>1</nav>"), fixed("<nav>2</nav>")))

	require.NoError(t, err)
	assert.Equal(t, "<span>7</span><nav>1</nav><nav>2</nav>", string(body))
}

func TestRenderPassesRequestContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "from-request")
	req := common.NewRequest(ctx, http.MethodGet, "/", nil, nil, nil)

	view := View[struct{}](func(c Context[struct{}]) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, ctx.Value(key{}).(string))
			return err
		})
	})

	body, err := Render(view, NewContext(req, struct{}{}))
	require.NoError(t, err)
	assert.Equal(t, "from-request", string(body))
}

func TestRenderErrors(t *testing.T) {
	ok := View[string](func(c Context[string]) templ.Component { return fixed(c.Data) })
	bad := View[string](func(c Context[string]) templ.Component { return failing("boom") })

	_, err := Render(bad, NewContext[string](nil, "x"))
	assert.ErrorContains(t, err, "boom")

	_, err = Render(ok, NewContext[string](nil, "x", fixed("fine"), failing("oob broke")))
	assert.ErrorContains(t, err, "oob fragment 1")

	_, err = Render[string](nil, NewContext[string](nil, "x"))
	assert.Error(t, err)
}

func TestRespond(t *testing.T) {
	view := View[string](func(c Context[string]) templ.Component { return fixed(c.Data) })

	resp, err := Respond(view, NewContext[string](nil, "<b>hi</b>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<b>hi</b>", string(resp.Body))
}
