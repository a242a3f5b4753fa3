// Package videoid extracts platform video ids from externally-hosted
// video URLs.
package videoid

import (
	"errors"
	"regexp"
)

var ErrUnsupportedURL = errors.New("unsupported video url")

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com|youtube-nocookie\.com)/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com|youtube-nocookie\.com)/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/live/([A-Za-z0-9_-]{11})`),
}

var bareId = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Extract returns the video id embedded in url, or ErrUnsupportedURL when
// the url does not match any recognized platform pattern.
func Extract(url string) (string, error) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}

	if bareId.MatchString(url) {
		return url, nil
	}

	return "", ErrUnsupportedURL
}
