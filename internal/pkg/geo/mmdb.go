package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MMDBLookuper 基于 MaxMind City 数据库
type MMDBLookuper struct {
	reader *geoip2.Reader
}

func OpenMMDB(path string) (*MMDBLookuper, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geo dataset %s: %w", path, err)
	}
	return &MMDBLookuper{reader: reader}, nil
}

func (m *MMDBLookuper) Lookup(ip net.IP) (*Record, error) {
	city, err := m.reader.City(ip)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		CountryCode: city.Country.IsoCode,
		City:        city.City.Names["en"],
	}
	if len(city.Subdivisions) > 0 {
		rec.Region = city.Subdivisions[0].IsoCode
	}
	return rec, nil
}

func (m *MMDBLookuper) Close() error {
	return m.reader.Close()
}
