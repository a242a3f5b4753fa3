package ytmeta

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/net/html"
)

func (f *Fetcher) fetchFromPage(ctx context.Context, videoId string) (*VideoMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://youtu.be/"+videoId, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return &VideoMeta{
		Title:        findTitle(doc),
		AuthorName:   findItempropName(doc),
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
	}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}

	return ""
}

func findItempropName(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		var isName bool
		var content string
		for _, attr := range n.Attr {
			switch {
			case attr.Key == "itemprop" && attr.Val == "name":
				isName = true
			case attr.Key == "content":
				content = attr.Val
			}
		}

		if isName {
			return content
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name := findItempropName(c); name != "" {
			return name
		}
	}

	return ""
}
