package request

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/envelope"
	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/security/securitytest"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

const pain001 = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.001.001.03">
  <CstmrCdtTrfInitn><GrpHdr><MsgId>MSG-1</MsgId></GrpHdr></CstmrCdtTrfInitn>
</Document>`

func TestUpload_CreditTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	built, err := NewUpload(f.sess, f.reg, OrderTypeCreditTransfer, []byte(pain001)).Build(ctx)
	require.NoError(t, err)
	valid, err := built.Validate()
	require.NoError(t, err)

	doc := valid.Document()
	assert.Equal(t, "CCT", doc.Static.OrderDetails.Spec.Type)
	assert.Equal(t, AttributeOrderData, doc.Static.OrderDetails.Spec.Attribute)
	assert.Equal(t, 1, doc.Static.NumSegments)

	segments := valid.Segments()
	require.Len(t, segments, 1)

	env := &envelope.Envelope{
		WrappedKey:       doc.Body.TransactionKey,
		EncryptedPayload: doc.Body.SignatureData,
		EncryptionDigest: doc.Body.EncryptionDigest.Digest,
		Segments:         segments,
	}
	data, err := envelope.OpenOrderData(env, f.keys.bankEnc)
	require.NoError(t, err)
	assert.Equal(t, pain001, string(data))

	// The signature covers the order data, not the placeholder
	sigXML, err := envelope.Open(env, f.keys.bankEnc)
	require.NoError(t, err)
	assert.Contains(t, string(sigXML), "<PartnerID>P1</PartnerID>")
}

func TestUpload_LargeOrderDataIsSegmented(t *testing.T) {
	f := newFixture(t)

	data := make([]byte, envelope.SegmentSize+512*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	built, err := NewUpload(f.sess, f.reg, OrderTypeDirectDebit, data).Build(context.Background())
	require.NoError(t, err)

	segments := built.Segments()
	assert.Len(t, segments, 3)
	assert.Equal(t, len(segments), built.Document().Static.NumSegments)
}

func TestFileUpload(t *testing.T) {
	f := newFixture(t)
	params := FileParams{
		FileFormat:  "pain.001.001.03",
		CountryCode: "DE",
		Test:        true,
		Parameters:  []Parameter{{Name: "BATCH", Value: "1"}},
	}

	built, err := NewFileUpload(f.sess, f.reg, params, []byte(pain001)).Build(context.Background())
	require.NoError(t, err)
	valid, err := built.Validate()
	require.NoError(t, err)
	wire, err := valid.Serialize()
	require.NoError(t, err)

	root := parse(t, wire.Bytes())
	assert.Equal(t, "FUL", text(t, root, "./header/static/OrderDetails/OrderType"))
	assert.Equal(t, "OZHNN", text(t, root, "./header/static/OrderDetails/OrderAttribute"))

	format := root.FindElement("./header/static/OrderDetails/FULOrderParams/FileFormat")
	require.NotNil(t, format)
	assert.Equal(t, "pain.001.001.03", format.Text())
	assert.Equal(t, "DE", format.SelectAttrValue("CountryCode", ""))

	params2 := root.FindElements("./header/static/OrderDetails/FULOrderParams/Parameter")
	require.Len(t, params2, 2)
	assert.Equal(t, "BATCH", text(t, params2[0], "./Name"))
	assert.Equal(t, "TEST", text(t, params2[1], "./Name"))
	assert.Equal(t, "TRUE", text(t, params2[1], "./Value"))

	_, err = NewFileUpload(f.sess, f.reg, FileParams{}, []byte(pain001)).Build(context.Background())
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageHeader, buildErr.Stage)
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	transactionID := securitytest.Counter(0x42)
	segments := []string{"c2VnbWVudDE=", "c2VnbWVudDI="}

	first, err := NewTransfer(f.sess, f.reg, transactionID, segments, 1)
	require.NoError(t, err)
	assert.False(t, first.Document().Mutable.LastSegment)

	last, err := NewTransfer(f.sess, f.reg, transactionID, segments, 2)
	require.NoError(t, err)
	valid, err := last.Validate()
	require.NoError(t, err)
	signed, err := valid.Authenticate(f.keys.userAuth)
	require.NoError(t, err)
	wire, err := signed.Serialize()
	require.NoError(t, err)

	root := parse(t, wire.Bytes())
	assert.Equal(t, "EBIXHOST", text(t, root, "./header/static/HostID"))
	assert.Equal(t, security.EncodeHex(transactionID), text(t, root, "./header/static/TransactionID"))
	assert.Equal(t, "Transfer", text(t, root, "./header/mutable/TransactionPhase"))
	assert.Equal(t, "2", text(t, root, "./header/mutable/SegmentNumber"))
	assert.Equal(t, "true", root.FindElement("./header/mutable/SegmentNumber").SelectAttrValue("lastSegment", ""))
	assert.Equal(t, "c2VnbWVudDI=", text(t, root, "./body/DataTransfer/OrderData"))
	assert.Nil(t, root.FindElement("./header/static/Nonce"))
	assert.NoError(t, security.VerifyAuthSignature(root, &f.keys.userAuth.PublicKey))
}

func TestTransfer_Errors(t *testing.T) {
	f := newFixture(t)
	segments := []string{strings.Repeat("A", 8)}

	_, err := NewTransfer(f.sess, f.reg, []byte{1, 2}, segments, 1)
	assert.Error(t, err)

	_, err = NewTransfer(f.sess, f.reg, securitytest.Counter(1), segments, 0)
	assert.Error(t, err)

	_, err = NewTransfer(f.sess, f.reg, securitytest.Counter(1), segments, 2)
	assert.Error(t, err)

	unsupported := newFixture(t, session.WithProtocol(0, "H004"))
	_, err = NewTransfer(unsupported.sess, unsupported.reg, securitytest.Counter(1), segments, 1)
	assert.ErrorIs(t, err, ErrProtocol)

	built, err := NewTransfer(f.sess, nil, securitytest.Counter(1), []string{""}, 1)
	require.NoError(t, err)
	_, err = built.Validate()
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageValidate, buildErr.Stage)
}

func TestUpload_DoesNotWriteCallerOptions(t *testing.T) {
	f := newFixture(t)
	opts := make([]Option, 1, 4)
	opts[0] = WithClock(fixedClock)

	NewUpload(f.sess, f.reg, OrderTypeCreditTransfer, []byte(pain001), opts...)
	NewFileUpload(f.sess, f.reg, FileParams{FileFormat: "pain.001.001.03"}, []byte(pain001), opts...)

	assert.Nil(t, opts[:2][1])
}
