package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/config"
)

func TestResolveProfileManaged(t *testing.T) {
	p := resolveProfile(config.MailConfig{Provider: config.MailProviderManaged})

	assert.Equal(t, "smtp.gmail.com", p.Host)
	assert.Equal(t, 465, p.Port)
	assert.True(t, p.SSL)
}

func TestResolveProfileRelay(t *testing.T) {
	cases := []struct {
		name    string
		port    int
		wantSSL bool
		want    int
	}{
		{"secure port", 465, true, 465},
		{"submission port", 587, false, 587},
		{"arbitrary port", 2525, false, 2525},
		{"unset port defaults to 587", 0, false, 587},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := resolveProfile(config.MailConfig{
				Provider:  config.MailProviderRelay,
				RelayHost: "mail.example.com",
				RelayPort: tc.port,
			})
			assert.Equal(t, "mail.example.com", p.Host)
			assert.Equal(t, tc.want, p.Port)
			assert.Equal(t, tc.wantSSL, p.SSL)
		})
	}
}
