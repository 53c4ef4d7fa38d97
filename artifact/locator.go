package artifact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	TransportFile = "file"
	TransportHTTP = "http"
)

// Locators names the two artifact sources. It is also the cache key.
type Locators struct {
	Scaler string `json:"scaler"`
	Model  string `json:"model"`
}

// Validate rejects blank locators.
func (l Locators) Validate() error {
	var errs []error
	if strings.TrimSpace(l.Scaler) == "" {
		errs = append(errs, errors.New("scaler locator is empty"))
	}
	if strings.TrimSpace(l.Model) == "" {
		errs = append(errs, errors.New("model locator is empty"))
	}
	return errors.Join(errs...)
}

func (l Locators) key() string {
	return l.Scaler + "\x00" + l.Model
}

// Source is a resolved locator.
type Source struct {
	Transport string
	Target    string
}

// Resolve decides how a locator is read. http(s) URLs are fetched, file://
// URLs and everything else are read from disk. A one-letter scheme is a
// Windows drive ("D:/models/scaler.json"), not a URL.
func Resolve(locator string) (Source, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Source{}, errors.New("empty locator")
	}
	u, err := url.Parse(locator)
	if err != nil || len(u.Scheme) <= 1 {
		return Source{Transport: TransportFile, Target: locator}, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return Source{Transport: TransportHTTP, Target: locator}, nil
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + u.Path
		}
		if path == "" {
			path = u.Opaque
		}
		return Source{Transport: TransportFile, Target: path}, nil
	default:
		return Source{}, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
}
