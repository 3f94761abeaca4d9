package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/flexygent/flexygent/tooling"
)

const (
	fetchDefaultMaxBytes = 500_000
	fetchMaxBytesCap     = 5_000_000
)

// Fetch returns the web.fetch tool. A nil client uses http.DefaultClient;
// tests inject their own transport.
func Fetch(client *http.Client) tooling.Tool {
	if client == nil {
		client = http.DefaultClient
	}
	return tooling.NewTool(tooling.Spec{
		Name:        "web.fetch",
		Description: "Fetch a URL with HTTP GET, returning text body and metadata.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to fetch via HTTP GET.",
			},
			"max_bytes": map[string]any{
				"type":        "integer",
				"minimum":     1024,
				"maximum":     fetchMaxBytesCap,
				"description": "Maximum response bytes to retain.",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Optional request headers.",
			},
			"extract_text": map[string]any{
				"type":        "boolean",
				"description": "If true and the response is HTML, strip markup and return visible text.",
			},
		}, "url"),
		Timeout:        15 * time.Second,
		MaxConcurrency: 8,
		NeedsNetwork:   true,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		url, _ := tooling.StringArg(args, "url")
		maxBytes := fetchDefaultMaxBytes
		if n, ok := tooling.IntArg(args, "max_bytes"); ok && n > 0 {
			maxBytes = n
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, tooling.Errorf("web.fetch", "invalid URL %q: %v", url, err)
		}
		if hdrs, ok := args["headers"].(map[string]any); ok {
			for k, v := range hdrs {
				if s, ok := v.(string); ok {
					req.Header.Set(k, s)
				}
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, tooling.Errorf("web.fetch", "request failed: %v", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
		if err != nil {
			return nil, tooling.Errorf("web.fetch", "read body: %v", err)
		}
		truncated := false
		if len(raw) > maxBytes {
			raw = raw[:maxBytes]
			truncated = true
		}

		contentType := resp.Header.Get("Content-Type")
		body := string(raw)
		if extract, _ := tooling.BoolArg(args, "extract_text"); extract && strings.Contains(contentType, "html") {
			if text, err := htmlToText(body); err == nil {
				body = text
			}
		}

		return map[string]any{
			"status_code":  resp.StatusCode,
			"content_type": contentType,
			"body":         body,
			"truncated":    truncated,
		}, nil
	})
}

// htmlToText strips script/style and collapses the document to its
// visible text, one block per line.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	var lines []string
	doc.Find("title, h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}
