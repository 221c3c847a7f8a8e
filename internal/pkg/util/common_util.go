package util

import (
	"math"
	"net"
	"strings"
)

const ipv4MappedPrefix = "::ffff:"

// ClientIP 优先取 X-Forwarded-For 的首个地址，否则取远端地址并去掉端口，非法地址返回空串
func ClientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := NormalizeIP(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := NormalizeIP(remoteAddr); net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// NormalizeIP 去掉端口、方括号以及 IPv4 映射前缀
func NormalizeIP(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.Trim(s, "[]")
	if len(s) > len(ipv4MappedPrefix) && strings.EqualFold(s[:len(ipv4MappedPrefix)], ipv4MappedPrefix) {
		rest := s[len(ipv4MappedPrefix):]
		if net.ParseIP(rest).To4() != nil && strings.Contains(rest, ".") {
			s = rest
		}
	}
	return s
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PtrString 空串返回 nil
func PtrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PtrUint64 0 返回 nil
func PtrUint64(i uint64) *uint64 {
	if i == 0 {
		return nil
	}
	return &i
}
