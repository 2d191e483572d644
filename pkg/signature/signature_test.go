package signature

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

var testIdentity = session.Identity{UserID: "U1", PartnerID: "P1"}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestBuild_Placeholder(t *testing.T) {
	key := testKey(t)

	p, err := Build(nil, testIdentity, security.SignatureVersionA005, Placeholder, key)
	require.NoError(t, err)
	assert.Equal(t, Placeholder, p.Data())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(p.Bytes()))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "UserSignatureData", root.Tag)
	assert.Equal(t, Namespace, root.SelectAttrValue("xmlns", ""))

	assert.Equal(t, "A005", root.FindElement("./OrderSignatureData/SignatureVersion").Text())
	assert.Equal(t, "P1", root.FindElement("./OrderSignatureData/PartnerID").Text())
	assert.Equal(t, "U1", root.FindElement("./OrderSignatureData/UserID").Text())

	value, err := base64.StdEncoding.DecodeString(root.FindElement("./OrderSignatureData/SignatureValue").Text())
	require.NoError(t, err)
	assert.NoError(t, security.VerifyOrderSignature(&key.PublicKey, "A005", Placeholder, value))
}

func TestBuild_Deterministic(t *testing.T) {
	key := testKey(t)

	a, err := Build(nil, testIdentity, security.SignatureVersionA005, Placeholder, key)
	require.NoError(t, err)
	b, err := Build(nil, testIdentity, security.SignatureVersionA005, Placeholder, key)
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestValidate(t *testing.T) {
	key := testKey(t)

	for _, version := range []string{security.SignatureVersionA005, security.SignatureVersionA006} {
		t.Run(version, func(t *testing.T) {
			p, err := Build(rand.Reader, testIdentity, version, []byte("<Document/>"), key)
			require.NoError(t, err)

			v, err := Validate(p)
			require.NoError(t, err)
			assert.False(t, v.IsZero())
			assert.Equal(t, p.Bytes(), v.Bytes())
			assert.Same(t, p, v.Payload())
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	key := testKey(t)

	_, err := Validate(nil)
	assert.ErrorIs(t, err, security.ErrSignature)

	p, err := Build(nil, testIdentity, security.SignatureVersionA005, Placeholder, key)
	require.NoError(t, err)

	tampered := *p
	tampered.data = []byte("other data")
	_, err = Validate(&tampered)
	assert.ErrorIs(t, err, security.ErrSignature)

	wrongUser := *p
	wrongUser.Identity.UserID = "U2"
	_, err = Validate(&wrongUser)
	assert.ErrorIs(t, err, security.ErrSignature)

	malformed := *p
	malformed.xml = []byte("<UserSignatureData")
	_, err = Validate(&malformed)
	assert.ErrorIs(t, err, security.ErrSignature)

	wrongRoot := *p
	wrongRoot.xml = []byte(`<Other xmlns="http://www.ebics.org/S001"/>`)
	_, err = Validate(&wrongRoot)
	assert.ErrorIs(t, err, security.ErrSignature)
}

func TestBuild_Errors(t *testing.T) {
	key := testKey(t)

	_, err := Build(nil, session.Identity{UserID: "U1"}, security.SignatureVersionA005, Placeholder, key)
	assert.ErrorIs(t, err, security.ErrSignature)

	_, err = Build(nil, testIdentity, security.SignatureVersionA005, nil, key)
	assert.ErrorIs(t, err, security.ErrSignature)

	_, err = Build(nil, testIdentity, "A004", Placeholder, key)
	assert.ErrorIs(t, err, security.ErrSignature)

	_, err = Build(nil, testIdentity, security.SignatureVersionA005, Placeholder, nil)
	assert.ErrorIs(t, err, security.ErrSignature)
}

func TestValidated_Zero(t *testing.T) {
	var v Validated
	assert.True(t, v.IsZero())
	assert.Nil(t, v.Bytes())
}
