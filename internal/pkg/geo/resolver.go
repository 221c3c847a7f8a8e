package geo

import (
	"context"
	log "log/slog"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Location IP 归属地，未知字段为 nil
type Location struct {
	CountryCode *string
	CountryName *string
	City        *string
	Region      *string
}

// Record 数据集中的原始记录
type Record struct {
	CountryCode string
	City        string
	Region      string
}

// Lookuper IP 数据集查询
type Lookuper interface {
	Lookup(ip net.IP) (*Record, error)
	Close() error
}

// Resolver 将 IP 解析为归属地，任何失败都降级为空 Location
type Resolver struct {
	mu       sync.RWMutex
	lookuper Lookuper
	cache    *expirable.LRU[string, Location]

	// OnLookup 记录查询结果（hit/miss/private/error/unknown）
	OnLookup func(result string)
}

func NewResolver(lookuper Lookuper, cacheSize int, cacheTTL time.Duration) *Resolver {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &Resolver{
		lookuper: lookuper,
		cache:    expirable.NewLRU[string, Location](cacheSize, nil, cacheTTL),
	}
}

// Resolve 空串、私有地址与无法解析的 IP 返回空 Location
func (r *Resolver) Resolve(ctx context.Context, ip string) Location {
	if ip == "" {
		return Location{}
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		r.observe("invalid")
		log.WarnContext(ctx, "Geo resolve skipped, invalid ip", "ip", ip)
		return Location{}
	}
	if IsPrivate(parsed) {
		r.observe("private")
		return Location{}
	}

	if loc, ok := r.cache.Get(ip); ok {
		r.observe("hit")
		return loc
	}

	r.mu.RLock()
	lookuper := r.lookuper
	var rec *Record
	var err error
	if lookuper != nil {
		rec, err = lookuper.Lookup(parsed)
	}
	r.mu.RUnlock()

	if lookuper == nil {
		r.observe("unavailable")
		return Location{}
	}
	if err != nil {
		r.observe("error")
		log.WarnContext(ctx, "Geo lookup failed", "ip", ip, "err", err)
		return Location{}
	}

	loc := toLocation(rec)
	if loc.CountryCode == nil {
		r.observe("unknown")
	} else {
		r.observe("miss")
	}
	r.cache.Add(ip, loc)
	return loc
}

// Swap 替换数据集并清空缓存，旧数据集在替换后关闭
func (r *Resolver) Swap(lookuper Lookuper) {
	r.mu.Lock()
	old := r.lookuper
	r.lookuper = lookuper
	r.mu.Unlock()

	r.cache.Purge()
	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn("Close previous geo dataset failed", "err", err)
		}
	}
}

// Reload 从文件重新加载 mmdb
func (r *Resolver) Reload(path string) error {
	lookuper, err := OpenMMDB(path)
	if err != nil {
		return err
	}
	r.Swap(lookuper)
	return nil
}

// Ready 是否已加载数据集
func (r *Resolver) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookuper != nil
}

func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookuper == nil {
		return nil
	}
	err := r.lookuper.Close()
	r.lookuper = nil
	return err
}

func (r *Resolver) observe(result string) {
	if r.OnLookup != nil {
		r.OnLookup(result)
	}
}

func toLocation(rec *Record) Location {
	if rec == nil || rec.CountryCode == "" {
		return Location{}
	}
	code := rec.CountryCode
	name := CountryName(code)
	loc := Location{CountryCode: &code, CountryName: &name}
	if rec.City != "" {
		city := rec.City
		loc.City = &city
	}
	if rec.Region != "" {
		region := rec.Region
		loc.Region = &region
	}
	return loc
}

// IsPrivate 回环、私有、链路本地与未指定地址
func IsPrivate(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
