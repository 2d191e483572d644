package request

import (
	"fmt"
	"time"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// Phase is the position of a message within a transaction
type Phase string

const (
	PhaseInitialisation Phase = "Initialisation"
	PhaseTransfer       Phase = "Transfer"
)

// MutableHeader is the part of the header that changes between the
// messages of one transaction.
type MutableHeader struct {
	Phase         Phase
	SegmentNumber int
	LastSegment   bool
}

// BuildMutableHeader returns the mutable header for a phase. Segment
// numbers only apply to the transfer phase.
func BuildMutableHeader(phase Phase, segment int, last bool) MutableHeader {
	if phase != PhaseTransfer {
		return MutableHeader{Phase: phase}
	}
	return MutableHeader{Phase: phase, SegmentNumber: segment, LastSegment: last}
}

// OrderDetails identifies the order of an initialisation message
type OrderDetails struct {
	OrderID string
	Spec    OrderSpec
}

// KeyDigest is a pinned bank key hash with its procedure version
type KeyDigest struct {
	Version   string
	Algorithm string
	Digest    []byte
}

// StaticHeader is the part of the header fixed for a transaction. In the
// transfer phase only HostID and TransactionID are set.
type StaticHeader struct {
	HostID         string
	Nonce          []byte
	Timestamp      time.Time
	PartnerID      string
	UserID         string
	Product        session.Product
	OrderDetails   OrderDetails
	Authentication KeyDigest
	Encryption     KeyDigest
	SecurityMedium string
	NumSegments    int
	TransactionID  []byte
}

// HeaderInput collects everything the static header is derived from
type HeaderInput struct {
	Session     session.Session
	Identity    session.Identity
	Product     session.Product
	Nonce       []byte
	Timestamp   time.Time
	OrderID     uint64
	Spec        OrderSpec
	Digests     session.BankKeyDigests
	NumSegments int
}

// BuildStaticHeader assembles the static header of an initialisation
// message. The digests are taken verbatim from the input.
func BuildStaticHeader(in HeaderInput) (StaticHeader, error) {
	if len(in.Nonce) != security.NonceSize {
		return StaticHeader{}, fmt.Errorf("nonce must be %d bytes, got %d", security.NonceSize, len(in.Nonce))
	}
	if err := in.Identity.Validate(); err != nil {
		return StaticHeader{}, err
	}
	if err := in.Spec.Validate(); err != nil {
		return StaticHeader{}, err
	}
	if err := in.Digests.Validate(); err != nil {
		return StaticHeader{}, err
	}
	if in.NumSegments < 0 {
		return StaticHeader{}, fmt.Errorf("negative segment count %d", in.NumSegments)
	}

	return StaticHeader{
		HostID:    in.Session.HostID,
		Nonce:     clone(in.Nonce),
		Timestamp: in.Timestamp.UTC(),
		PartnerID: in.Identity.PartnerID,
		UserID:    in.Identity.UserID,
		Product:   in.Product,
		OrderDetails: OrderDetails{
			OrderID: FormatOrderID(in.OrderID),
			Spec:    in.Spec,
		},
		Authentication: KeyDigest{
			Version:   in.Session.AuthenticationVersion,
			Algorithm: security.AlgorithmSHA256,
			Digest:    clone(in.Digests.Authentication),
		},
		Encryption: KeyDigest{
			Version:   in.Session.EncryptionVersion,
			Algorithm: security.AlgorithmSHA256,
			Digest:    clone(in.Digests.Encryption),
		},
		SecurityMedium: in.Identity.Medium(),
		NumSegments:    in.NumSegments,
	}, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
