package request

import (
	"fmt"
	"log/slog"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// NewTransfer builds the transfer phase message carrying segment number
// (1-based) of an upload. The transaction id is the one the bank returned
// for the initialisation message.
func NewTransfer(sess session.Session, registry session.Registry, transactionID []byte, segments []string, number int, opts ...Option) (*Built, error) {
	if len(transactionID) != 16 {
		return nil, stageError(StageHeader, fmt.Errorf("transaction id must be 16 bytes, got %d", len(transactionID)))
	}
	if number < 1 || number > len(segments) {
		return nil, stageError(StageHeader, fmt.Errorf("segment %d out of range 1..%d", number, len(segments)))
	}

	revision, version := session.DefaultRevision, session.DefaultVersion
	if registry != nil {
		revision, version = registry.ProtocolRevisionAndVersion()
	}
	if err := checkProtocol(revision, version); err != nil {
		return nil, stageError(StageDocument, err)
	}

	doc := &Document{
		Revision: revision,
		Version:  version,
		Mutable:  BuildMutableHeader(PhaseTransfer, number, number == len(segments)),
		Static: StaticHeader{
			HostID:        sess.HostID,
			TransactionID: clone(transactionID),
		},
		Body: Body{OrderData: segments[number-1]},
	}

	o := newOptions(opts)
	o.logger.Debug("transfer segment built",
		slog.String("transaction_id", security.EncodeHex(transactionID)),
		slog.Int("segment", number),
		slog.Bool("last", doc.Mutable.LastSegment))

	return &Built{doc: doc, opts: o}, nil
}
