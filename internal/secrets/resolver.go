package secrets

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	pkgsecrets "github.com/Checker-Finance/battlenet/pkg/secrets"
	"github.com/Checker-Finance/battlenet/pkg/utils"
)

// Resolver resolves the client id and secret from an ordered list of providers.
//
// Each field is resolved independently: a provider is only consulted while a
// field is still empty, and it only fills the fields that are still empty.
// Providers after the first complete pair are never consulted.
type Resolver struct {
	logger    *zap.Logger
	providers []pkgsecrets.Provider
	hint      string
}

// NewResolver constructs a resolver over providers, in precedence order.
// hint is logged when resolution fails (typically the secrets file path).
func NewResolver(logger *zap.Logger, hint string, providers ...pkgsecrets.Provider) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:    logger,
		providers: providers,
		hint:      hint,
	}
}

// Resolve walks the providers and returns a complete pair or a *apierr.ConfigurationError.
func (r *Resolver) Resolve(ctx context.Context) (pkgsecrets.Credentials, error) {
	var (
		creds   pkgsecrets.Credentials
		idFrom  string
		keyFrom string
	)

	for _, p := range r.providers {
		if creds.Complete() {
			break
		}

		found, err := p.Lookup(ctx)
		if err != nil {
			r.logger.Error("bnet.credentials.source_failed",
				zap.String("source", p.Name()),
				zap.Error(err))
			return pkgsecrets.Credentials{}, asConfigError(p.Name(), err)
		}

		if creds.ClientID == "" && found.ClientID != "" {
			creds.ClientID = found.ClientID
			idFrom = p.Name()
		}
		if creds.Secret == "" && found.Secret != "" {
			creds.Secret = found.Secret
			keyFrom = p.Name()
		}
	}

	if !creds.Complete() {
		r.logger.Error("bnet.credentials_unset", zap.String("message", apierr.ErrCredentialsUnset+"."))
		r.logger.Error("bnet.credentials_hint",
			zap.String("message", "Create "+r.hint+", set them in the environment, or pass them to the object."))
		return pkgsecrets.Credentials{}, &apierr.ConfigurationError{Msg: apierr.ErrCredentialsUnset}
	}

	r.logger.Debug("bnet.credentials.resolved",
		zap.String("client_id", utils.MaskSecret(creds.ClientID)),
		zap.String("client_id_source", idFrom),
		zap.String("secret_source", keyFrom))
	return creds, nil
}

// Sources lists provider names in precedence order.
func (r *Resolver) Sources() string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, ",")
}

// asConfigError keeps configuration errors as they are and wraps anything else.
func asConfigError(source string, err error) error {
	var cfgErr *apierr.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr
	}
	return &apierr.ConfigurationError{Msg: "credential source " + source + " failed", Err: err}
}
