package utils

import (
	"net"
	"net/http"
	"strings"
)

func RealClientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		first, _, _ := strings.Cut(xfwd, ",")
		return strings.TrimSpace(first)
	}
	if xreal := strings.TrimSpace(r.Header.Get("X-Real-IP")); xreal != "" {
		return xreal
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
