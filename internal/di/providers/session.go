package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookstandapp/bookstand-web/internal/config"
	"github.com/bookstandapp/bookstand-web/internal/logger"
	"github.com/bookstandapp/bookstand-web/internal/session"
)

// SessionKey is the symmetric key used to sign session cookies.
type SessionKey []byte

// ProvideSessionKey loads or generates the session signing key.
func ProvideSessionKey(i do.Injector) (SessionKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := session.LoadOrGenerateKey(cfg.App.DataPath)
	if err != nil {
		return nil, err
	}

	log.Info("Session signing key loaded",
		"session_ttl", cfg.Session.TTL,
		"secure_cookie", cfg.Session.Secure,
	)

	return SessionKey(key), nil
}

// ProvideSessionManager provides the session cookie manager.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[SessionKey](i)

	return session.NewManager(key, cfg.Session.TTL, cfg.Session.Secure)
}
