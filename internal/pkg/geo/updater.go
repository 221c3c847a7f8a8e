package geo

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// Updater 下载新的 mmdb 数据集并热替换
type Updater struct {
	resolver    *Resolver
	client      *resty.Client
	downloadURL string
	dbPath      string
}

func NewUpdater(resolver *Resolver, downloadURL, dbPath string) *Updater {
	client := resty.New().
		SetTimeout(5*time.Minute).
		SetRetryCount(2).
		SetRetryWaitTime(3*time.Second).
		SetHeader("User-Agent", "Viewpoint-GeoUpdater")

	return &Updater{
		resolver:    resolver,
		client:      client,
		downloadURL: downloadURL,
		dbPath:      dbPath,
	}
}

// EnsureLoaded 启动时加载本地数据集，不存在则先下载
func (u *Updater) EnsureLoaded(ctx context.Context) error {
	if _, err := os.Stat(u.dbPath); err == nil {
		return u.resolver.Reload(u.dbPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return u.Update(ctx)
}

// Update 下载到临时文件，校验可读后原子替换
func (u *Updater) Update(ctx context.Context) error {
	if u.downloadURL == "" {
		return errors.New("geo download url not configured")
	}

	dir := filepath.Dir(u.dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%d.tmp", filepath.Base(u.dbPath), time.Now().UnixNano()))
	defer os.Remove(tmpPath)

	resp, err := u.client.R().
		SetContext(ctx).
		SetOutput(tmpPath).
		Get(u.downloadURL)
	if err != nil {
		return fmt.Errorf("download geo dataset: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("download geo dataset: unexpected status %d", resp.StatusCode())
	}

	lookuper, err := OpenMMDB(tmpPath)
	if err != nil {
		return err
	}
	if err = os.Rename(tmpPath, u.dbPath); err != nil {
		_ = lookuper.Close()
		return err
	}
	u.resolver.Swap(lookuper)

	log.InfoContext(ctx, "Geo dataset updated", "path", u.dbPath, "size", resp.Size())
	return nil
}
