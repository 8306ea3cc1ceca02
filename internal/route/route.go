// Package route maps topics to the navigation paths the studio shows and
// accepts on the command line.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/csheth/cardstudio/internal/api"
)

const contentPrefix = "/content"

// ErrNotContent is returned for paths outside the content view.
var ErrNotContent = errors.New("not a content route")

// ContentPath returns the content view path for topic. The topic is trimmed
// and component-encoded, so spaces become %20.
func ContentPath(topic string) string {
	return contentPrefix + "?topic=" + api.EncodeComponent(strings.TrimSpace(topic))
}

// TopicFromPath extracts the decoded topic from a content path.
func TopicFromPath(path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("parse route: %w", err)
	}
	if strings.TrimSuffix(u.Path, "/") != contentPrefix {
		return "", ErrNotContent
	}
	// Decode by hand: url.Values would turn a literal '+' into a space.
	for _, pair := range strings.Split(u.RawQuery, "&") {
		name, value, _ := strings.Cut(pair, "=")
		if name != "topic" {
			continue
		}
		topic, err := url.PathUnescape(value)
		if err != nil {
			return "", fmt.Errorf("decode topic: %w", err)
		}
		return strings.TrimSpace(topic), nil
	}
	return "", nil
}
