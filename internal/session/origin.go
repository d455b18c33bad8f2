package session

import (
	"fmt"
	"net/url"
	"strings"
)

// HostOriginValidator accepts http(s) origins whose host matches the server
// address, the loopback aliases for its port, or an explicit allow list.
// Allow-list entries may be full origins ("https://example.com") or bare
// hosts ("example.com:8443").
type HostOriginValidator struct {
	hosts map[string]bool
}

// NewOriginValidator builds a validator for a server listening on host:port.
func NewOriginValidator(host string, port int, allowed []string) *HostOriginValidator {
	v := &HostOriginValidator{hosts: make(map[string]bool)}
	v.hosts[fmt.Sprintf("%s:%d", host, port)] = true
	v.hosts[fmt.Sprintf("localhost:%d", port)] = true
	v.hosts[fmt.Sprintf("127.0.0.1:%d", port)] = true

	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if u, err := url.Parse(entry); err == nil && u.Host != "" {
			v.hosts[strings.ToLower(u.Host)] = true
			continue
		}
		v.hosts[strings.ToLower(entry)] = true
	}
	return v
}

// IsAllowedOrigin reports whether origin may open a session.
func (v *HostOriginValidator) IsAllowedOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return v.hosts[strings.ToLower(u.Host)]
}
