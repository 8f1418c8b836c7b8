package tapmusic

import (
	"net/url"
	"strings"

	"github.com/handiism/tapmusic-collage/internal/model"
)

// DefaultBaseURL is the public collage endpoint.
const DefaultBaseURL = "https://tapmusic.net/collage.php"

// BuildURL composes the collage request URL for req.
//
// The result is a pure function of its inputs. Values are query-escaped, so
// a username with reserved characters cannot alter the query. If baseURL
// already carries a query string, the collage parameters are appended to it.
func BuildURL(baseURL string, req *model.CollageRequest) string {
	var b strings.Builder

	b.WriteString(baseURL)
	if strings.Contains(baseURL, "?") {
		if !strings.HasSuffix(baseURL, "?") && !strings.HasSuffix(baseURL, "&") {
			b.WriteByte('&')
		}
	} else {
		b.WriteByte('?')
	}

	writeParam(&b, "user", req.User, true)
	writeParam(&b, "type", req.Period.Token(), false)
	writeParam(&b, "size", req.Size.Grid(), false)
	if req.ShowCaption {
		writeParam(&b, "caption", "true", false)
	}
	if req.ShowPlaycount {
		writeParam(&b, "playcount", "true", false)
	}

	return b.String()
}

func writeParam(b *strings.Builder, key, value string, first bool) {
	if !first {
		b.WriteByte('&')
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
