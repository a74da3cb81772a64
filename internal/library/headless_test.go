package library

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/keyword-server/internal/browser/headless"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
)

const shopHTML = `<html>
<head><title>Shop</title></head>
<body>
  <h1 id="heading">Catalogue</h1>
  <form id="order" action="/order" method="post">
    <input type="text" name="qty" id="qty">
    <select name="size" id="size">
      <option value="s">Small</option>
      <option value="l">Large</option>
    </select>
    <input type="checkbox" name="gift" id="gift" value="yes">
    <input type="submit" id="buy" value="Buy">
  </form>
  <table id="prices">
    <tr><th>Item</th><th>Price</th></tr>
    <tr><td>Tea</td><td>3</td></tr>
    <tr><td>Cake</td><td>5</td></tr>
  </table>
  <ol id="steps"><li>pick</li><li>pay</li></ol>
</body>
</html>`

func newShop(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, shopHTML)
	})
	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fmt.Fprintf(w, `<html><head><title>Ordered</title></head><body><p id="summary">%s %s %s</p></body></html>`,
			r.PostForm.Get("qty"), r.PostForm.Get("size"), r.PostForm.Get("gift"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func headlessEngine(t *testing.T) *keyword.Engine {
	t.Helper()
	lib := New(headless.NewLauncher(headless.Options{}))
	t.Cleanup(func() { _ = lib.Close() })
	reg := keyword.NewRegistry()
	require.NoError(t, lib.Register(reg))
	return keyword.NewEngine(reg)
}

func TestHeadless_OrderFlow(t *testing.T) {
	srv := newShop(t)
	e := headlessEngine(t)
	run := func(name string, args ...string) keyword.Result {
		return e.Invoke(context.Background(), name, args)
	}
	ok := func(name string, args ...string) keyword.Result {
		t.Helper()
		res := run(name, args...)
		require.Truef(t, res.Passed(), "%s %v: %s", name, args, res.Error)
		return res
	}

	ok("start_browser", srv.URL+"/")
	ok("title_should_be", "Shop")
	ok("page_should_contain", "Catalogue")
	ok("page_should_contain_textfield", "qty")
	ok("page_should_contain_list", "steps", "true")
	ok("form_should_contain_select_list", "order", "size")
	assert.Equal(t, "pick;;pay", ok("get_list_items", "steps").Return)
	assert.Equal(t, "5", ok("get_table_cell", "prices", "2", "1").Return)
	ok("table_column_should_contain", "prices", "0", "Cake")

	ok("input_text", "qty", "2")
	ok("select_item_from_list", "size", "text=Large")
	ok("item_should_be_selected", "size", "value=l")
	ok("select_checkbox", "gift")
	ok("click_button", "buy")

	ok("title_should_be", "Ordered")
	ok("element_text_should_be", "summary", "2 l yes")
	ok("url_should_contain", "/order")
	assert.Equal(t, 1, ok("get_window_count").Return)
}

func TestHeadless_MissingElementFails(t *testing.T) {
	srv := newShop(t)
	e := headlessEngine(t)
	require.True(t, e.Invoke(context.Background(), "start_browser", []string{srv.URL + "/"}).Passed())

	res := e.Invoke(context.Background(), "page_should_contain_element", []string{"id=missing"})
	assert.Equal(t, keyword.StatusFail, res.Status)
	assert.Equal(t, failure.KindVerification, res.Kind)
	assert.Contains(t, res.Error, "missing")
	assert.True(t, strings.HasPrefix(res.Error, "The element described by id=missing is not contained within the page"))
	assert.Empty(t, res.Output)

	res = e.Invoke(context.Background(), "click_link", []string{"text=Nowhere"})
	assert.Equal(t, failure.KindDelegate, res.Kind)
	assert.Equal(t, "unable to locate link, using text=Nowhere", res.Error)
}
