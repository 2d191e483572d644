package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
)

// OrderDataDigest hashes order data for the electronic signature. Carriage
// return, line feed and Ctrl-Z are removed first so that the signature does
// not depend on the platform the file was produced on.
func OrderDataDigest(data []byte) []byte {
	h := sha256.New()
	start := 0
	for i, b := range data {
		if b == '\r' || b == '\n' || b == 0x1a {
			h.Write(data[start:i])
			start = i + 1
		}
	}
	h.Write(data[start:])
	return h.Sum(nil)
}

// SignOrderData computes an A005 (RSA PKCS#1 v1.5) or A006 (RSA-PSS)
// signature over the order data. The signer may be backed by a file key or
// an HSM.
func SignOrderData(random io.Reader, signer crypto.Signer, version string, data []byte) ([]byte, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signing key not set", ErrSignature)
	}
	if _, ok := signer.Public().(*rsa.PublicKey); !ok {
		return nil, fmt.Errorf("%w: %s requires an RSA key", ErrSignature, version)
	}

	opts, err := signerOpts(version)
	if err != nil {
		return nil, err
	}
	if random == nil {
		random = rand.Reader
	}

	sig, err := signer.Sign(random, OrderDataDigest(data), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return sig, nil
}

// VerifyOrderSignature checks a signature produced by SignOrderData
func VerifyOrderSignature(pub *rsa.PublicKey, version string, data, sig []byte) error {
	if pub == nil {
		return fmt.Errorf("%w: verification key not set", ErrSignature)
	}

	digest := OrderDataDigest(data)
	var err error
	switch version {
	case SignatureVersionA005:
		err = rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig)
	case SignatureVersionA006:
		err = rsa.VerifyPSS(pub, crypto.SHA256, digest, sig, pssOptions())
	default:
		return fmt.Errorf("%w: unsupported signature version %q", ErrSignature, version)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

func signerOpts(version string) (crypto.SignerOpts, error) {
	switch version {
	case SignatureVersionA005:
		return crypto.SHA256, nil
	case SignatureVersionA006:
		return pssOptions(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported signature version %q", ErrSignature, version)
	}
}

func pssOptions() *rsa.PSSOptions {
	return &rsa.PSSOptions{SaltLength: sha256.Size, Hash: crypto.SHA256}
}
