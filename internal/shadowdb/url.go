package shadowdb

import (
	"net/url"
	"strings"

	"github.com/shem-sql/shem/internal/shemerr"
)

// deriveShadowURL swaps adminURL's database path component for dbName,
// keeping its host, credentials, and query parameters (sslmode and the
// like) intact.
func deriveShadowURL(adminURL, dbName string) (string, error) {
	u, err := url.Parse(adminURL)
	if err != nil {
		return "", shemerr.Connectionf("parsing administrative database URL", err)
	}
	u.Path = "/" + strings.TrimPrefix(dbName, "/")
	return u.String(), nil
}
