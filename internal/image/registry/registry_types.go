package registry

import "github.com/google/go-containerregistry/pkg/authn"

type AuthType string

const (
	AuthTypeAuthenticator AuthType = "authenticator"
	AuthTypeKeychain      AuthType = "keychain"
)

// Registry is a push destination: it validates/returns the destination image
// reference and supplies authentication for go-containerregistry.
type Registry interface {
	GetAuthType() AuthType
	GetKeychain() authn.Keychain
	GetAuthentication() (authn.Authenticator, error)
	ResetAuthentication() error
	GetImageRef() (string, error)
}
