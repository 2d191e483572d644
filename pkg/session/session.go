package session

import (
	"fmt"

	"github.com/sirosfoundation/go-ebics/pkg/security"
)

// DefaultSecurityMedium is used when the subscriber does not specify one
const DefaultSecurityMedium = "0000"

// Session describes the bank a request is addressed to and the security
// procedure versions agreed with it. It is not modified by the builders.
type Session struct {
	HostID                string
	SignatureVersion      string
	AuthenticationVersion string
	EncryptionVersion     string
}

// New returns a session with the H004 default procedure versions
func New(hostID string) Session {
	return Session{
		HostID:                hostID,
		SignatureVersion:      security.SignatureVersionA005,
		AuthenticationVersion: security.AuthenticationVersionX002,
		EncryptionVersion:     security.EncryptionVersionE002,
	}
}

// Validate checks that the session can be used to build requests
func (s Session) Validate() error {
	if s.HostID == "" {
		return fmt.Errorf("host id is required")
	}
	switch s.SignatureVersion {
	case security.SignatureVersionA005, security.SignatureVersionA006:
	default:
		return fmt.Errorf("unsupported signature version %q", s.SignatureVersion)
	}
	if s.AuthenticationVersion != security.AuthenticationVersionX002 {
		return fmt.Errorf("unsupported authentication version %q", s.AuthenticationVersion)
	}
	if s.EncryptionVersion != security.EncryptionVersionE002 {
		return fmt.Errorf("unsupported encryption version %q", s.EncryptionVersion)
	}
	return nil
}

// Identity is the subscriber on whose behalf requests are built
type Identity struct {
	UserID         string
	PartnerID      string
	SecurityMedium string
}

// Validate checks the mandatory identity fields
func (i Identity) Validate() error {
	if i.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if i.PartnerID == "" {
		return fmt.Errorf("partner id is required")
	}
	return nil
}

// Medium returns the security medium, falling back to DefaultSecurityMedium
func (i Identity) Medium() string {
	if i.SecurityMedium == "" {
		return DefaultSecurityMedium
	}
	return i.SecurityMedium
}

// BankKeyDigests are the SHA-256 hashes of the bank's authentication (X002)
// and encryption (E002) public keys, pinned from the initialisation letter.
type BankKeyDigests struct {
	Authentication []byte
	Encryption     []byte
}

// ParseBankKeyDigests decodes hex digests as printed on the initialisation
// letter.
func ParseBankKeyDigests(authenticationHex, encryptionHex string) (BankKeyDigests, error) {
	auth, err := security.DecodeDigest(authenticationHex)
	if err != nil {
		return BankKeyDigests{}, fmt.Errorf("authentication digest: %w", err)
	}
	enc, err := security.DecodeDigest(encryptionHex)
	if err != nil {
		return BankKeyDigests{}, fmt.Errorf("encryption digest: %w", err)
	}
	return BankKeyDigests{Authentication: auth, Encryption: enc}, nil
}

// Validate checks both digests have the SHA-256 length
func (d BankKeyDigests) Validate() error {
	if len(d.Authentication) != security.DigestSize {
		return fmt.Errorf("%w: authentication digest must be %d bytes, got %d",
			security.ErrEncoding, security.DigestSize, len(d.Authentication))
	}
	if len(d.Encryption) != security.DigestSize {
		return fmt.Errorf("%w: encryption digest must be %d bytes, got %d",
			security.ErrEncoding, security.DigestSize, len(d.Encryption))
	}
	return nil
}

// Product identifies the client software in the static header
type Product struct {
	Language    string
	Name        string
	InstituteID string
}

// DefaultProduct is reported when none is configured
var DefaultProduct = Product{Language: "en", Name: "go-ebics"}
