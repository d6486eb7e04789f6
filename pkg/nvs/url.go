package nvs

import (
	"fmt"
	"net/url"
	"strings"
)

// OpenURL creates a Partition from a URL:
//
//	mem://
//	bolt:///var/lib/multisensor/nvs.db
//	redis://host:6379/0?prefix=multisensor
//
// The partition is not initialized.
func OpenURL(rawURL string) (Partition, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL %q: %w", rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mem", "memory":
		return NewMemPartition(), nil
	case "bolt", "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + path
		}
		if path == "" {
			return nil, fmt.Errorf("storage URL %q: missing path", rawURL)
		}
		return NewBoltPartition(path), nil
	case "redis", "rediss":
		prefix := u.Query().Get("prefix")
		if prefix == "" {
			prefix = "nvs"
		}
		q := u.Query()
		q.Del("prefix")
		u.RawQuery = q.Encode()
		client, err := ParseRedisURL(u.String())
		if err != nil {
			return nil, err
		}
		return NewRedisPartition(client, prefix), nil
	}
	return nil, fmt.Errorf("storage URL %q: unsupported scheme %q", rawURL, u.Scheme)
}
