package security

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
)

// AuthReferenceURI selects every element flagged for authentication
const AuthReferenceURI = "#xpointer(//*[@authenticate='true'])"

// AuthSignature is the result of an X002 signing operation: a SignedInfo
// element ready to be placed under AuthSignature, and the signature value.
type AuthSignature struct {
	SignedInfo *etree.Element
	Value      []byte
}

// AuthSigner creates X002 authentication signatures: XML-DSig with inclusive
// C14N and RSA-SHA256 over all elements carrying authenticate="true".
type AuthSigner struct {
	signer crypto.Signer
	random io.Reader
}

// NewAuthSigner creates an authentication signer. The key must be RSA.
func NewAuthSigner(signer crypto.Signer, random io.Reader) (*AuthSigner, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: authentication key not set", ErrSignature)
	}
	if _, ok := signer.Public().(*rsa.PublicKey); !ok {
		return nil, fmt.Errorf("%w: X002 requires an RSA key", ErrSignature)
	}
	if random == nil {
		random = rand.Reader
	}
	return &AuthSigner{signer: signer, random: random}, nil
}

// Sign signs the document rooted at root. The tree is not modified.
func (s *AuthSigner) Sign(root *etree.Element) (*AuthSignature, error) {
	digest, err := AuthDigest(root)
	if err != nil {
		return nil, err
	}

	signedInfo := NewSignedInfo(digest)
	canonical, err := canonicalize(signedInfo, inScopeNamespaces(root))
	if err != nil {
		return nil, err
	}

	hashed := sha256.Sum256(canonical)
	value, err := s.signer.Sign(s.random, hashed[:], crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignature, err)
	}

	return &AuthSignature{SignedInfo: signedInfo, Value: value}, nil
}

// NewSignedInfo builds the ds:SignedInfo template for the given digest
func NewSignedInfo(digest []byte) *etree.Element {
	signedInfo := etree.NewElement("ds:SignedInfo")

	c14n := signedInfo.CreateElement("ds:CanonicalizationMethod")
	c14n.CreateAttr("Algorithm", AlgorithmC14N)

	method := signedInfo.CreateElement("ds:SignatureMethod")
	method.CreateAttr("Algorithm", AlgorithmRSASHA256)

	ref := signedInfo.CreateElement("ds:Reference")
	ref.CreateAttr("URI", AuthReferenceURI)
	transform := ref.CreateElement("ds:Transforms").CreateElement("ds:Transform")
	transform.CreateAttr("Algorithm", AlgorithmC14N)
	digestMethod := ref.CreateElement("ds:DigestMethod")
	digestMethod.CreateAttr("Algorithm", AlgorithmSHA256)
	ref.CreateElement("ds:DigestValue").SetText(base64.StdEncoding.EncodeToString(digest))

	return signedInfo
}

// AuthDigest computes the SHA-256 digest over the canonical form of every
// authenticate="true" element, concatenated in document order.
func AuthDigest(root *etree.Element) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrSignature)
	}

	elements := AuthenticatedElements(root)
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no elements flagged for authentication", ErrSignature)
	}

	namespaces := inScopeNamespaces(root)
	h := sha256.New()
	for _, el := range elements {
		canonical, err := canonicalize(el, namespaces)
		if err != nil {
			return nil, err
		}
		h.Write(canonical)
	}
	return h.Sum(nil), nil
}

// AuthenticatedElements returns the elements carrying authenticate="true"
// in document order.
func AuthenticatedElements(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.SelectAttrValue("authenticate", "") == "true" {
			out = append(out, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return out
}

// VerifyAuthSignature checks the AuthSignature of a document against the
// subscriber's X002 public key.
func VerifyAuthSignature(root *etree.Element, pub *rsa.PublicKey) error {
	if root == nil {
		return fmt.Errorf("%w: no root element", ErrSignature)
	}
	if pub == nil {
		return fmt.Errorf("%w: verification key not set", ErrSignature)
	}

	signedInfo := root.FindElement("./AuthSignature/ds:SignedInfo")
	valueElem := root.FindElement("./AuthSignature/ds:SignatureValue")
	digestElem := root.FindElement("./AuthSignature/ds:SignedInfo/ds:Reference/ds:DigestValue")
	if signedInfo == nil || valueElem == nil || digestElem == nil {
		return fmt.Errorf("%w: AuthSignature incomplete", ErrSignature)
	}

	claimed, err := base64.StdEncoding.DecodeString(digestElem.Text())
	if err != nil {
		return fmt.Errorf("%w: digest value: %w", ErrSignature, err)
	}
	digest, err := AuthDigest(root)
	if err != nil {
		return err
	}
	if !bytes.Equal(claimed, digest) {
		return fmt.Errorf("%w: digest mismatch", ErrSignature)
	}

	value, err := base64.StdEncoding.DecodeString(valueElem.Text())
	if err != nil {
		return fmt.Errorf("%w: signature value: %w", ErrSignature, err)
	}
	canonical, err := canonicalize(signedInfo, inScopeNamespaces(root))
	if err != nil {
		return err
	}
	hashed := sha256.Sum256(canonical)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], value); err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

// canonicalize renders a detached copy of el with the namespace
// declarations it inherits from the document root.
func canonicalize(el *etree.Element, namespaces []etree.Attr) ([]byte, error) {
	detached := el.Copy()
	for _, ns := range namespaces {
		if detached.SelectAttr(ns.FullKey()) == nil {
			detached.CreateAttr(ns.FullKey(), ns.Value)
		}
	}

	out, err := dsig.MakeC14N10RecCanonicalizer().Canonicalize(detached)
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalization: %w", ErrSignature, err)
	}
	return out, nil
}

func inScopeNamespaces(root *etree.Element) []etree.Attr {
	var namespaces []etree.Attr
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
			namespaces = append(namespaces, attr)
		}
	}
	return namespaces
}
