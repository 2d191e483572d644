package request

import (
	"errors"
	"fmt"

	"github.com/sirosfoundation/go-ebics/pkg/security"
)

func validateDocument(d *Document) error {
	if d == nil {
		return errors.New("no document")
	}
	if d.Version == "" || d.Revision <= 0 {
		return fmt.Errorf("invalid protocol version %q revision %d", d.Version, d.Revision)
	}
	if d.Static.HostID == "" {
		return errors.New("host id missing")
	}

	switch d.Mutable.Phase {
	case PhaseInitialisation:
		return validateInitialisation(d)
	case PhaseTransfer:
		return validateTransfer(d)
	default:
		return fmt.Errorf("unknown transaction phase %q", d.Mutable.Phase)
	}
}

func validateInitialisation(d *Document) error {
	s := d.Static
	if len(s.Nonce) != security.NonceSize {
		return fmt.Errorf("nonce must be %d bytes", security.NonceSize)
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp missing")
	}
	if s.PartnerID == "" || s.UserID == "" {
		return errors.New("subscriber identity incomplete")
	}
	if !ValidOrderID(s.OrderDetails.OrderID) {
		return fmt.Errorf("invalid order id %q", s.OrderDetails.OrderID)
	}
	if err := s.OrderDetails.Spec.Validate(); err != nil {
		return err
	}
	for _, kd := range []KeyDigest{s.Authentication, s.Encryption, d.Body.EncryptionDigest} {
		if len(kd.Digest) != security.DigestSize || kd.Version == "" || kd.Algorithm == "" {
			return errors.New("bank key digest incomplete")
		}
	}
	if string(s.Encryption.Digest) != string(d.Body.EncryptionDigest.Digest) {
		return errors.New("body encrypts for a key other than the pinned encryption key")
	}
	if s.OrderDetails.Spec.CarriesOrderData() != (s.NumSegments > 0) {
		return fmt.Errorf("order attribute %s inconsistent with %d segments", s.OrderDetails.Spec.Attribute, s.NumSegments)
	}
	if len(d.Body.TransactionKey) == 0 {
		return errors.New("transaction key missing")
	}
	if len(d.Body.SignatureData) == 0 {
		return errors.New("signature data missing")
	}
	return nil
}

func validateTransfer(d *Document) error {
	if len(d.Static.TransactionID) != 16 {
		return errors.New("transaction id must be 16 bytes")
	}
	if d.Mutable.SegmentNumber < 1 {
		return fmt.Errorf("invalid segment number %d", d.Mutable.SegmentNumber)
	}
	if d.Body.OrderData == "" {
		return errors.New("order data segment missing")
	}
	return nil
}
