package secrets

import "context"

// Credentials is the OAuth2 client id/secret pair used against the token endpoint.
type Credentials struct {
	ClientID string `json:"CLIENTID"`
	Secret   string `json:"BLSECRET"`
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.Secret != ""
}

// Provider defines a single source of client credentials.
// Concrete implementations (passed values, environment, file, AWS) satisfy this.
type Provider interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Lookup returns whatever fields the source holds; fields it does not hold are empty.
	// A source that is simply absent returns empty Credentials and a nil error.
	Lookup(ctx context.Context) (Credentials, error)
}

// Static is a Provider over values handed to the client by its caller.
type Static Credentials

func (s Static) Name() string { return "passed" }

func (s Static) Lookup(context.Context) (Credentials, error) {
	return Credentials(s), nil
}
