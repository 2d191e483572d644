package request

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// NamespaceH004 is the EBICS 2.5 schema namespace
const NamespaceH004 = "urn:org:ebics:H004"

// TimestampLayout is the xs:dateTime form used in the static header
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var versionPattern = regexp.MustCompile(`^H[0-9]{3}$`)

func checkProtocol(revision int, version string) error {
	if revision < 1 {
		return fmt.Errorf("%w: revision %d", ErrProtocol, revision)
	}
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("%w: version %q", ErrProtocol, version)
	}
	return nil
}

// Body is the DataTransfer content. Initialisation messages carry the
// encryption info and signature data, transfer messages one segment.
type Body struct {
	EncryptionDigest KeyDigest
	TransactionKey   []byte
	SignatureData    []byte
	OrderData        string
}

// Document is an assembled ebicsRequest
type Document struct {
	Revision int
	Version  string
	Mutable  MutableHeader
	Static   StaticHeader
	Body     Body

	auth *security.AuthSignature
}

// Authenticated reports whether the document carries an AuthSignature
func (d *Document) Authenticated() bool {
	return d.auth != nil
}

func (d *Document) clone() *Document {
	c := *d
	c.Static.Nonce = clone(d.Static.Nonce)
	c.Static.TransactionID = clone(d.Static.TransactionID)
	c.Static.Authentication.Digest = clone(d.Static.Authentication.Digest)
	c.Static.Encryption.Digest = clone(d.Static.Encryption.Digest)
	c.Body.EncryptionDigest.Digest = clone(d.Body.EncryptionDigest.Digest)
	c.Body.TransactionKey = clone(d.Body.TransactionKey)
	c.Body.SignatureData = clone(d.Body.SignatureData)
	if d.auth != nil {
		c.auth = &security.AuthSignature{
			SignedInfo: d.auth.SignedInfo.Copy(),
			Value:      clone(d.auth.Value),
		}
	}
	return &c
}

// Tree renders the document as an XML tree. Each call returns a new tree.
func (d *Document) Tree() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ebicsRequest")
	root.CreateAttr("xmlns", NamespaceH004)
	root.CreateAttr("xmlns:ds", security.NSXMLDSig)
	root.CreateAttr("Version", d.Version)
	root.CreateAttr("Revision", strconv.Itoa(d.Revision))

	header := root.CreateElement("header")
	header.CreateAttr("authenticate", "true")
	if d.Mutable.Phase == PhaseTransfer {
		d.appendTransferStatic(header)
	} else {
		d.appendInitialisationStatic(header)
	}
	d.appendMutable(header)

	auth := root.CreateElement("AuthSignature")
	if d.auth != nil {
		auth.AddChild(d.auth.SignedInfo.Copy())
		auth.CreateElement("ds:SignatureValue").SetText(encode(d.auth.Value))
	}

	transfer := root.CreateElement("body").CreateElement("DataTransfer")
	if d.Mutable.Phase == PhaseTransfer {
		transfer.CreateElement("OrderData").SetText(d.Body.OrderData)
	} else {
		info := transfer.CreateElement("DataEncryptionInfo")
		info.CreateAttr("authenticate", "true")
		appendDigest(info, "EncryptionPubKeyDigest", d.Body.EncryptionDigest)
		info.CreateElement("TransactionKey").SetText(encode(d.Body.TransactionKey))

		data := transfer.CreateElement("SignatureData")
		data.CreateAttr("authenticate", "true")
		data.SetText(encode(d.Body.SignatureData))
	}

	return doc
}

func (d *Document) appendInitialisationStatic(header *etree.Element) {
	s := d.Static
	static := header.CreateElement("static")
	static.CreateElement("HostID").SetText(s.HostID)
	static.CreateElement("Nonce").SetText(security.EncodeHex(s.Nonce))
	static.CreateElement("Timestamp").SetText(s.Timestamp.UTC().Format(TimestampLayout))
	static.CreateElement("PartnerID").SetText(s.PartnerID)
	static.CreateElement("UserID").SetText(s.UserID)
	appendProduct(static, s.Product)

	details := static.CreateElement("OrderDetails")
	details.CreateElement("OrderType").SetText(s.OrderDetails.Spec.Type)
	details.CreateElement("OrderID").SetText(s.OrderDetails.OrderID)
	details.CreateElement("OrderAttribute").SetText(s.OrderDetails.Spec.Attribute)
	if s.OrderDetails.Spec.Params != nil {
		s.OrderDetails.Spec.Params.appendTo(details)
	}

	digests := static.CreateElement("BankPubKeyDigests")
	appendDigest(digests, "Authentication", s.Authentication)
	appendDigest(digests, "Encryption", s.Encryption)

	static.CreateElement("SecurityMedium").SetText(s.SecurityMedium)
	static.CreateElement("NumSegments").SetText(strconv.Itoa(s.NumSegments))
}

func (d *Document) appendTransferStatic(header *etree.Element) {
	static := header.CreateElement("static")
	static.CreateElement("HostID").SetText(d.Static.HostID)
	static.CreateElement("TransactionID").SetText(security.EncodeHex(d.Static.TransactionID))
}

func (d *Document) appendMutable(header *etree.Element) {
	mutable := header.CreateElement("mutable")
	mutable.CreateElement("TransactionPhase").SetText(string(d.Mutable.Phase))
	if d.Mutable.Phase == PhaseTransfer {
		segment := mutable.CreateElement("SegmentNumber")
		segment.CreateAttr("lastSegment", strconv.FormatBool(d.Mutable.LastSegment))
		segment.SetText(strconv.Itoa(d.Mutable.SegmentNumber))
	}
}

func appendProduct(parent *etree.Element, p session.Product) {
	if p.Name == "" {
		return
	}
	product := parent.CreateElement("Product")
	product.CreateAttr("Language", p.Language)
	if p.InstituteID != "" {
		product.CreateAttr("InstituteID", p.InstituteID)
	}
	product.SetText(p.Name)
}

func appendDigest(parent *etree.Element, tag string, d KeyDigest) {
	el := parent.CreateElement(tag)
	el.CreateAttr("Version", d.Version)
	el.CreateAttr("Algorithm", d.Algorithm)
	el.SetText(encode(d.Digest))
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
