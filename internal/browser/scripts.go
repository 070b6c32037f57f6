// internal/browser/scripts.go
package browser

import (
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// resolveAllJS returns every match of a locator in document order. XPath
// snapshots may contain non-element nodes; those are dropped.
const resolveAllJS = `function(strategy, sel) {
  if (strategy === 'xpath') {
    const snap = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    const out = [];
    for (let i = 0; i < snap.snapshotLength; i++) {
      const n = snap.snapshotItem(i);
      if (n instanceof Element) out.push(n);
    }
    return out;
  }
  return Array.from(document.querySelectorAll(sel));
}`

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	return string(b)
}

func jsFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// elementResult is what every element-scoped script returns.
type elementResult struct {
	Found  bool    `json:"found"`
	Value  bool    `json:"value"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// elementScript wraps body so that it runs with `el` bound to the index-th
// match of loc. body may assign `value` (boolean). The element's rectangle
// is always reported.
func elementScript(loc Locator, index int, body string) string {
	return fmt.Sprintf(`(function() {
  const els = (%s)(%s, %s);
  const el = els[%d];
  if (!el) return {found: false};
  let value = false;
  %s
  const r = el.getBoundingClientRect();
  return {found: true, value: value, x: r.left, y: r.top, width: r.width, height: r.height};
})()`, resolveAllJS, jsString(string(loc.Strategy)), jsString(loc.Selector), index, body)
}
