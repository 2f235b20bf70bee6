package mailer

import "github.com/spec-kit/support-desk/internal/config"

const (
	managedHost = "smtp.gmail.com"
	managedPort = 465

	// Well-known implicit-TLS SMTP port. Any other relay port uses
	// submission-style transport (STARTTLS where offered).
	securePort = 465

	defaultRelayPort = 587
)

// profile is the resolved transport endpoint for the process.
type profile struct {
	Host string
	Port int
	SSL  bool
}

// resolveProfile maps the configured provider onto a concrete endpoint.
// The managed provider is a fixed host/port with implicit TLS; a custom
// relay takes host and port from the environment and derives the TLS
// flag from the port.
func resolveProfile(cfg config.MailConfig) profile {
	if cfg.Provider == config.MailProviderManaged {
		return profile{Host: managedHost, Port: managedPort, SSL: true}
	}
	port := cfg.RelayPort
	if port <= 0 {
		port = defaultRelayPort
	}
	return profile{Host: cfg.RelayHost, Port: port, SSL: port == securePort}
}
