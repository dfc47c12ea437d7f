package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/battlenet/internal/apierr"
)

func fixedHome(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestStatic(t *testing.T) {
	s := Static{ClientID: "id"}
	got, err := s.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "id"}, got)
	assert.False(t, got.Complete())
	assert.Equal(t, "passed", s.Name())
}

func TestEnvProvider(t *testing.T) {
	p := NewEnvProvider(func(k string) (string, bool) {
		switch k {
		case EnvClientID:
			return "env-id", true
		case EnvSecret:
			return "env-secret", true
		}
		return "", false
	})
	got, err := p.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "env-id", Secret: "env-secret"}, got)
	assert.True(t, got.Complete())
}

func TestEnvProvider_UsesProcessEnv(t *testing.T) {
	t.Setenv(EnvClientID, "from-os")
	t.Setenv(EnvSecret, "")

	got, err := NewEnvProvider(nil).Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-os", got.ClientID)
	assert.Empty(t, got.Secret)
}

// ─── File provider ───────────────────────────────────────────────────────────

func TestFileProvider_Path(t *testing.T) {
	p := NewFileProvider(afero.NewMemMapFs(), "", fixedHome("/home/u"))
	assert.Equal(t, "/home/u/.bnet_secrets.json", p.Path())

	p = NewFileProvider(afero.NewMemMapFs(), "/abs/creds.json", fixedHome("/home/u"))
	assert.Equal(t, "/abs/creds.json", p.Path())
}

func TestExpandHome(t *testing.T) {
	failing := func() (string, error) { return "", errors.New("no home") }

	assert.Equal(t, "/home/u", ExpandHome("~", fixedHome("/home/u")))
	assert.Equal(t, "/home/u/x.json", ExpandHome("~/x.json", fixedHome("/home/u")))
	assert.Equal(t, "~other/x.json", ExpandHome("~other/x.json", fixedHome("/home/u")))
	assert.Equal(t, "~/x.json", ExpandHome("~/x.json", failing))
}

func TestFileProvider_Lookup(t *testing.T) {
	const path = "/home/u/.bnet_secrets.json"

	tests := []struct {
		name    string
		content *string
		want    Credentials
		wantKey string
		wantErr bool
	}{
		{
			name: "missing file is not an error",
		},
		{
			name:    "both keys",
			content: aws.String(`{"CLIENTID":"file-id","BLSECRET":"file-secret","extra":1}`),
			want:    Credentials{ClientID: "file-id", Secret: "file-secret"},
		},
		{
			name:    "missing secret",
			content: aws.String(`{"CLIENTID":"file-id"}`),
			wantKey: EnvSecret,
			wantErr: true,
		},
		{
			name:    "missing client id",
			content: aws.String(`{"BLSECRET":"file-secret"}`),
			wantKey: EnvClientID,
			wantErr: true,
		},
		{
			name:    "non-string value",
			content: aws.String(`{"CLIENTID":12345,"BLSECRET":"s"}`),
			wantKey: EnvClientID,
			wantErr: true,
		},
		{
			name:    "malformed json",
			content: aws.String(`{"CLIENTID":`),
			wantErr: true,
		},
		{
			name:    "not an object",
			content: aws.String(`["CLIENTID","BLSECRET"]`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != nil {
				require.NoError(t, afero.WriteFile(fs, path, []byte(*tt.content), 0o600))
			}

			got, err := NewFileProvider(fs, "~/.bnet_secrets.json", fixedHome("/home/u")).Lookup(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			var cfgErr *apierr.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
			if tt.wantKey != "" {
				assert.Contains(t, err.Error(), tt.wantKey)
			}
			assert.Equal(t, Credentials{}, got)
		})
	}
}

// ─── AWS Secrets Manager ─────────────────────────────────────────────────────

type fakeSecretsManager struct {
	value *string
	err   error
	asked string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestAWSProvider_Lookup(t *testing.T) {
	fake := &fakeSecretsManager{value: aws.String(`{"CLIENTID":"aws-id","BLSECRET":"aws-secret"}`)}
	p := &AWSSecretsManagerProvider{client: fake, secretName: "prod/bnet"}

	got, err := p.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "aws-id", Secret: "aws-secret"}, got)
	assert.Equal(t, "prod/bnet", fake.asked)
	assert.Equal(t, "aws-secretsmanager", p.Name())
}

func TestAWSProvider_PartialSecret(t *testing.T) {
	fake := &fakeSecretsManager{value: aws.String(`{"BLSECRET":"aws-secret"}`)}
	p := &AWSSecretsManagerProvider{client: fake, secretName: "prod/bnet"}

	got, err := p.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Secret: "aws-secret"}, got)
}

func TestAWSProvider_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeSecretsManager
		want string
	}{
		{"fetch error", &fakeSecretsManager{err: errors.New("AccessDeniedException")}, "failed to fetch secret"},
		{"binary secret", &fakeSecretsManager{}, "has no string value"},
		{"bad json", &fakeSecretsManager{value: aws.String("plain")}, "invalid secret format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &AWSSecretsManagerProvider{client: tt.fake, secretName: "prod/bnet"}
			_, err := p.Lookup(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
