// internal/output/markdown.go
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// SaveSnapshot converts a plan page's HTML to Markdown and writes it
// under dir, named after the URL slug. Snapshots are an audit artifact
// for debugging selector drift, not part of the record schema.
func SaveSnapshot(pageURL, html, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the plan page so the snapshot
	// stands alone.
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			str := fmt.Sprintf("[%s](%s)", selec.Text(), resolveURL(pageURL, href))
			return &str
		},
	})

	mdStr, err := converter.ConvertString(html)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, snapshotName(pageURL)), []byte(mdStr), 0644)
}

func snapshotName(pageURL string) string {
	slug := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if slug == "" {
		slug = "index"
	}
	return slug + ".md"
}

func resolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}
