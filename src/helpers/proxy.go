package helpers

import (
	"fmt"
	"net/url"
	"strings"
)

// -----------------------------------------------------------------------------

// ValidateProxy checks if a proxy string is roughly valid.
func ValidateProxy(proxyStr string) bool {
	u, err := url.Parse(FormatProxy(proxyStr))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "socks5")
}

// -----------------------------------------------------------------------------

// FormatProxy ensures the proxy has a scheme.
func FormatProxy(proxyStr string) string {
	proxyStr = strings.TrimSpace(proxyStr)
	if proxyStr != "" && !strings.Contains(proxyStr, "://") {
		return "http://" + proxyStr
	}
	return proxyStr
}

// -----------------------------------------------------------------------------

// ParseProxy returns the proxy URL, or nil when proxyStr is empty.
func ParseProxy(proxyStr string) (*url.URL, error) {
	if strings.TrimSpace(proxyStr) == "" {
		return nil, nil
	}
	if !ValidateProxy(proxyStr) {
		return nil, fmt.Errorf("invalid proxy %q", proxyStr)
	}
	return url.Parse(FormatProxy(proxyStr))
}
