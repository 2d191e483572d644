package request

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/security"
	"github.com/sirosfoundation/go-ebics/pkg/session"
)

type keySet struct {
	user     *rsa.PrivateKey
	userAuth *rsa.PrivateKey
	bankAuth *rsa.PrivateKey
	bankEnc  *rsa.PrivateKey
}

var testKeys = sync.OnceValue(func() keySet {
	gen := func() *rsa.PrivateKey {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		return key
	}
	return keySet{user: gen(), userAuth: gen(), bankAuth: gen(), bankEnc: gen()}
})

var fixedTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedTime
}

type fixture struct {
	keys     keySet
	sess     session.Session
	reg      *session.MemoryRegistry
	counter  *session.Counter
	authHex  string
	encHex   string
	identity session.Identity
}

func newFixture(t *testing.T, opts ...session.MemoryOption) *fixture {
	t.Helper()
	keys := testKeys()

	authHex := security.EncodeHex(security.PublicKeyDigest(&keys.bankAuth.PublicKey))
	encHex := security.EncodeHex(security.PublicKeyDigest(&keys.bankEnc.PublicKey))
	digests, err := session.ParseBankKeyDigests(authHex, encHex)
	require.NoError(t, err)

	identity := session.Identity{UserID: "U1", PartnerID: "P1"}
	counter := session.NewCounter(1)
	base := []session.MemoryOption{
		session.WithBankKeys(&keys.bankAuth.PublicKey, &keys.bankEnc.PublicKey),
		session.WithSignatureKey(keys.user),
		session.WithAuthenticationKey(keys.userAuth),
		session.WithOrderIDs(counter),
	}

	return &fixture{
		keys:     keys,
		sess:     session.New("EBIXHOST"),
		reg:      session.NewMemoryRegistry(identity, digests, append(base, opts...)...),
		counter:  counter,
		authHex:  authHex,
		encHex:   encHex,
		identity: identity,
	}
}

func parse(t *testing.T, data []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func text(t *testing.T, root *etree.Element, path string) string {
	t.Helper()
	el := root.FindElement(path)
	require.NotNil(t, el, "element %s missing", path)
	return el.Text()
}

func serializeElement(t *testing.T, el *etree.Element) string {
	t.Helper()
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	out, err := doc.WriteToString()
	require.NoError(t, err)
	return out
}
