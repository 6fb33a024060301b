package admin

import (
	"os"
	"strconv"
)

// EnvConfig reads runtime configuration from the process environment
type EnvConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	listenAddr      string
	dsn             string
}

// ConfigFromEnv builds config with sane defaults for local runs
func ConfigFromEnv() *EnvConfig {
	c := &EnvConfig{
		signingKey:      getenv("AUTH_SIGNING_KEY", "change-me"),
		tokenExpiration: getenvInt("AUTH_TOKEN_EXPIRATION", 72),
		issuer:          getenv("AUTH_ISSUER", "admin-page"),
		listenAddr:      getenv("LISTEN_ADDR", ":8080"),
		dsn:             getenv("DATABASE_DSN", "file:admin.db?cache=shared&mode=rwc"),
	}
	return c
}

func (c *EnvConfig) GetSigningKey() string   { return c.signingKey }
func (c *EnvConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c *EnvConfig) GetIssuer() string       { return c.issuer }
func (c *EnvConfig) GetListenAddr() string   { return c.listenAddr }
func (c *EnvConfig) GetDSN() string          { return c.dsn }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
