package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"property-scraper/normalize"
)

// record is one queryable piece of a fetched page: the page itself, a
// listing card, or an agent block inside a card.
type record interface {
	// values returns the raw strings sel points at, in source order.
	values(sel string) []string
	// records returns the sub-records sel points at, in source order.
	records(sel string) []record
}

type parseFunc func(body []byte) (record, error)

// attrSuffixRe splits "a.brochure@href" into a selector and an attribute.
var attrSuffixRe = regexp.MustCompile(`^(.*?)@([A-Za-z_:][A-Za-z0-9_:.\-]*)$`)

func splitAttr(sel string) (string, string) {
	m := attrSuffixRe.FindStringSubmatch(strings.TrimSpace(sel))
	if m == nil {
		return strings.TrimSpace(sel), ""
	}
	base := strings.TrimSpace(m[1])
	// "[@class" or a trailing "/" means the @ belongs to an XPath expression.
	if strings.HasSuffix(base, "[") || strings.HasSuffix(base, "/") {
		return strings.TrimSpace(sel), ""
	}
	return base, m[2]
}

// htmlRecord is an element queried with CSS or XPath.
type htmlRecord struct {
	node  *html.Node
	query func(n *html.Node, sel string) []*html.Node
}

func parseCSS(body []byte) (record, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return htmlRecord{node: doc, query: queryCSS}, nil
}

func parseXPath(body []byte) (record, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return htmlRecord{node: doc, query: queryXPath}, nil
}

func queryCSS(n *html.Node, sel string) []*html.Node {
	return goquery.NewDocumentFromNode(n).Find(sel).Nodes
}

func queryXPath(n *html.Node, sel string) []*html.Node {
	nodes, err := htmlquery.QueryAll(n, sel)
	if err != nil {
		return nil
	}
	return nodes
}

func (r htmlRecord) match(sel string) []*html.Node {
	if sel == "" {
		return []*html.Node{r.node}
	}
	return r.query(r.node, sel)
}

func (r htmlRecord) values(sel string) []string {
	if strings.TrimSpace(sel) == "" {
		return nil
	}
	base, attr := splitAttr(sel)

	var out []string
	for _, n := range r.match(base) {
		if attr != "" {
			if v, ok := attrValue(n, attr); ok {
				out = append(out, v)
			}
			continue
		}
		out = append(out, normalize.Clean(textFragments(n)...))
	}
	return out
}

func (r htmlRecord) records(sel string) []record {
	if strings.TrimSpace(sel) == "" {
		return nil
	}
	nodes := r.query(r.node, sel)
	out := make([]record, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, htmlRecord{node: n, query: r.query})
	}
	return out
}

func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// blockElements break text flow; inline elements such as <b> do not.
var blockElements = map[string]bool{
	"address": true, "article": true, "br": true, "dd": true, "div": true,
	"dt": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "li": true, "p": true, "section": true, "td": true, "th": true,
	"tr": true,
}

// textFragments collects the text under n, skipping scripts and styles.
// Block elements start a new fragment so text from sibling blocks does not
// run together.
func textFragments(n *html.Node) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			cur.WriteString(c.Data)
			return
		case html.ElementNode:
			switch c.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		block := c.Type == html.ElementNode && blockElements[c.Data]
		if block {
			flush()
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			flush()
		}
	}
	walk(n)
	flush()
	return out
}

// stripMarkup removes tags from feed values that carry HTML, such as
// rich-text descriptions. Every stripped tag leaves a space behind.
var stripMarkup = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

func plainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return html.UnescapeString(stripMarkup.Sanitize(s))
}

// jsonRecord is a value inside a JSON feed, queried with gjson paths.
type jsonRecord struct {
	value gjson.Result
}

func parseJSON(body []byte) (record, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("parse json: invalid document")
	}
	return jsonRecord{value: gjson.ParseBytes(body)}, nil
}

func (r jsonRecord) get(path string) gjson.Result {
	if path == "" || path == "@this" {
		return r.value
	}
	return r.value.Get(path)
}

func (r jsonRecord) values(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	res := r.get(path)
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	if !res.IsArray() {
		return []string{plainText(res.String())}
	}
	var out []string
	for _, item := range res.Array() {
		if item.Type == gjson.Null {
			continue
		}
		out = append(out, plainText(item.String()))
	}
	return out
}

func (r jsonRecord) records(path string) []record {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	res := r.get(path)
	switch {
	case res.IsArray():
		items := res.Array()
		out := make([]record, 0, len(items))
		for _, item := range items {
			out = append(out, jsonRecord{value: item})
		}
		return out
	case res.IsObject():
		return []record{jsonRecord{value: res}}
	}
	return nil
}
