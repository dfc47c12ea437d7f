package secrets

import (
	"context"
	"os"
)

const (
	// EnvClientID is the environment variable holding the client id.
	EnvClientID = "CLIENTID"
	// EnvSecret is the environment variable holding the client secret.
	EnvSecret = "BLSECRET"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvProvider reads credentials from process environment variables.
type EnvProvider struct {
	lookup LookupFunc
}

// NewEnvProvider creates an EnvProvider. A nil lookup uses os.LookupEnv.
func NewEnvProvider(lookup LookupFunc) *EnvProvider {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvProvider{lookup: lookup}
}

func (p *EnvProvider) Name() string { return "environment" }

func (p *EnvProvider) Lookup(context.Context) (Credentials, error) {
	id, _ := p.lookup(EnvClientID)
	secret, _ := p.lookup(EnvSecret)
	return Credentials{ClientID: id, Secret: secret}, nil
}
