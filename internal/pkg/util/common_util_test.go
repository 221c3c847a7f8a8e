package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		remote    string
		want      string
	}{
		{"forwarded first entry", " 203.0.113.7 , 10.0.0.1", "10.0.0.2:5555", "203.0.113.7"},
		{"remote with port", "", "198.51.100.4:443", "198.51.100.4"},
		{"mapped ipv4", "", "[::ffff:198.51.100.4]:80", "198.51.100.4"},
		{"mapped ipv4 forwarded", "::ffff:203.0.113.9", "", "203.0.113.9"},
		{"plain ipv6", "", "[2001:db8::1]:8080", "2001:db8::1"},
		{"empty", "", "", ""},
		{"blank forwarded falls back", " ", "192.0.2.1:1", "192.0.2.1"},
		{"non ip forwarded falls back", "unknown", "203.0.113.7:5000", "203.0.113.7"},
		{"obfuscated forwarded falls back", "_hidden, 10.0.0.1", "198.51.100.4:443", "198.51.100.4"},
		{"non ip remote", "unknown", "@pipe", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClientIP(tc.forwarded, tc.remote))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 300.0, Round2(3.0/1.0*100))
	assert.Equal(t, 33.33, Round2(1.0/3.0*100))
	assert.Equal(t, 66.67, Round2(2.0/3.0*100))
}

func TestValidateDTO(t *testing.T) {
	type body struct {
		Window int `validate:"min=0,max=10"`
	}
	assert.NoError(t, ValidateDTO(body{Window: 5}))
	assert.Error(t, ValidateDTO(body{Window: 11}))
}
