package signature

import (
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// Namespace of the UserSignatureData document
const Namespace = "http://www.ebics.org/S001"

// Placeholder is signed by control orders that carry no business data.
// Banks accept any non-empty content; a single space is the common choice.
var Placeholder = []byte(" ")

// Payload is a signed UserSignatureData document together with what is
// needed to check it.
type Payload struct {
	Identity session.Identity
	Version  string
	Value    []byte

	data []byte
	pub  *rsa.PublicKey
	xml  []byte
}

// Bytes returns the serialized UserSignatureData document
func (p *Payload) Bytes() []byte {
	return append([]byte(nil), p.xml...)
}

// Data returns the order data that was signed
func (p *Payload) Data() []byte {
	return append([]byte(nil), p.data...)
}

// Build signs data for the identity and renders the UserSignatureData
// document. The signer must hold an RSA key.
func Build(random io.Reader, identity session.Identity, version string, data []byte, signer crypto.Signer) (*Payload, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", security.ErrSignature, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: order data is empty", security.ErrSignature)
	}

	value, err := security.SignOrderData(random, signer, version, data)
	if err != nil {
		return nil, err
	}
	pub, _ := signer.Public().(*rsa.PublicKey)

	xml, err := render(identity, version, value)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Identity: identity,
		Version:  version,
		Value:    value,
		data:     append([]byte(nil), data...),
		pub:      pub,
		xml:      xml,
	}, nil
}

func render(identity session.Identity, version string, value []byte) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("UserSignatureData")
	root.CreateAttr("xmlns", Namespace)

	order := root.CreateElement("OrderSignatureData")
	order.CreateElement("SignatureVersion").SetText(version)
	order.CreateElement("SignatureValue").SetText(base64.StdEncoding.EncodeToString(value))
	order.CreateElement("PartnerID").SetText(identity.PartnerID)
	order.CreateElement("UserID").SetText(identity.UserID)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: serializing UserSignatureData: %w", security.ErrSignature, err)
	}
	return out, nil
}

// Validated is a payload that passed Validate
type Validated struct {
	payload *Payload
}

// Validate parses the rendered document back, checks that it describes the
// payload and verifies the signature over the order data.
func Validate(p *Payload) (Validated, error) {
	if p == nil || len(p.xml) == 0 {
		return Validated{}, fmt.Errorf("%w: empty payload", security.ErrSignature)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(p.xml); err != nil {
		return Validated{}, fmt.Errorf("%w: malformed UserSignatureData: %w", security.ErrSignature, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "UserSignatureData" || root.NamespaceURI() != Namespace {
		return Validated{}, fmt.Errorf("%w: unexpected root element", security.ErrSignature)
	}

	order := root.SelectElement("OrderSignatureData")
	if order == nil {
		return Validated{}, fmt.Errorf("%w: OrderSignatureData missing", security.ErrSignature)
	}
	checks := []struct {
		field string
		want  string
	}{
		{"SignatureVersion", p.Version},
		{"PartnerID", p.Identity.PartnerID},
		{"UserID", p.Identity.UserID},
	}
	for _, c := range checks {
		el := order.SelectElement(c.field)
		if el == nil || el.Text() != c.want {
			return Validated{}, fmt.Errorf("%w: %s does not match", security.ErrSignature, c.field)
		}
	}

	valueElem := order.SelectElement("SignatureValue")
	if valueElem == nil {
		return Validated{}, fmt.Errorf("%w: SignatureValue missing", security.ErrSignature)
	}
	value, err := base64.StdEncoding.DecodeString(valueElem.Text())
	if err != nil {
		return Validated{}, fmt.Errorf("%w: SignatureValue: %w", security.ErrSignature, err)
	}

	if err := security.VerifyOrderSignature(p.pub, p.Version, p.data, value); err != nil {
		return Validated{}, err
	}
	return Validated{payload: p}, nil
}

// Bytes returns the serialized UserSignatureData document, or nil for the
// zero value.
func (v Validated) Bytes() []byte {
	if v.payload == nil {
		return nil
	}
	return v.payload.Bytes()
}

// Payload returns the underlying payload
func (v Validated) Payload() *Payload {
	return v.payload
}

// IsZero reports whether v was not produced by Validate
func (v Validated) IsZero() bool {
	return v.payload == nil
}
