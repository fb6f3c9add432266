// Package productkey derives canonical cross-source product identities
// from listing URLs.
package productkey

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Key is a canonical product identity. Clean reports whether a
// platform catalog id was extracted; keys without a clean id must not
// be treated as definite matches.
type Key struct {
	Platform string
	ID       string
	Clean    bool
}

// String renders the key as "platform:id".
func (k Key) String() string {
	return k.Platform + ":" + k.ID
}

var (
	amazonASINRe  = regexp.MustCompile(`/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})`)
	flipkartItmRe = regexp.MustCompile(`/p/(itm[a-zA-Z0-9]+)`)
	myntraBuyRe   = regexp.MustCompile(`/(\d+)/buy`)
)

// tracking params stripped before falling back to a path-derived id
var trackingParams = map[string]bool{
	"tag":          true,
	"ref":          true,
	"ref_":         true,
	"affid":        true,
	"affExtParam1": true,
	"affExtParam2": true,
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"smid":         true,
	"psc":          true,
	"th":           true,
}

// FromURL canonicalizes a listing URL into a Key using platform rules.
// Amazon ASINs, Flipkart item codes and Myntra style ids are extracted
// directly; anything else falls back to the cleaned host+path, marked
// not clean.
func FromURL(rawURL string) (Key, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Key{}, fmt.Errorf("productkey: empty url")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Key{}, fmt.Errorf("productkey: parse url: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	platform := platformFromHost(host)

	switch platform {
	case "amazon":
		if m := amazonASINRe.FindStringSubmatch(u.Path); m != nil {
			return Key{Platform: platform, ID: m[1], Clean: true}, nil
		}
	case "flipkart":
		if m := flipkartItmRe.FindStringSubmatch(u.Path); m != nil {
			return Key{Platform: platform, ID: m[1], Clean: true}, nil
		}
		if pid := u.Query().Get("pid"); pid != "" {
			return Key{Platform: platform, ID: strings.ToUpper(pid), Clean: true}, nil
		}
	case "myntra":
		if m := myntraBuyRe.FindStringSubmatch(u.Path); m != nil {
			return Key{Platform: platform, ID: m[1], Clean: true}, nil
		}
	}

	return Key{Platform: platform, ID: fallbackID(u), Clean: false}, nil
}

// ForDeal derives the key for a store + link pair, falling back to a
// store-scoped title hash input when the link is unusable.
func ForDeal(store, link, title string) Key {
	if key, err := FromURL(link); err == nil {
		return key
	}
	return Key{
		Platform: normalizers.NormalizeStore(store),
		ID:       normalizers.RemoveWhitespace(normalizers.NormalizeTitle(title)),
		Clean:    false,
	}
}

func platformFromHost(host string) string {
	switch {
	case strings.Contains(host, "amazon"), host == "amzn.to", host == "amzn.in":
		return "amazon"
	case strings.Contains(host, "flipkart"), host == "fkrt.it", host == "fkrt.co":
		return "flipkart"
	case strings.Contains(host, "myntra"):
		return "myntra"
	default:
		parts := strings.Split(host, ".")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0]
		}
		return "unknown"
	}
}

// fallbackID builds a stable id from the cleaned path and remaining
// non-tracking query params.
func fallbackID(u *url.URL) string {
	path := strings.Trim(u.EscapedPath(), "/")

	q := u.Query()
	for param := range q {
		if trackingParams[param] {
			q.Del(param)
		}
	}

	id := path
	if encoded := q.Encode(); encoded != "" {
		id += "?" + encoded
	}
	if id == "" {
		id = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	return strings.ToLower(id)
}
