package security

// Algorithm URIs used in EBICS H004 documents
const (
	// Digest algorithm for bank key hashes and the authentication signature
	AlgorithmSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"

	// Signature algorithm of the X002 authentication signature
	AlgorithmRSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"

	// Canonicalization used for X002 (inclusive C14N 1.0, without comments)
	AlgorithmC14N = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
)

// Namespaces
const (
	NSXMLDSig = "http://www.w3.org/2000/09/xmldsig#"
)

// Security procedure versions
const (
	SignatureVersionA005      = "A005"
	SignatureVersionA006      = "A006"
	AuthenticationVersionX002 = "X002"
	EncryptionVersionE002     = "E002"
)

const (
	// NonceSize is the length of the request nonce in bytes
	NonceSize = 16

	// TransactionKeySize is the AES-128 transaction key length
	TransactionKeySize = 16

	// DigestSize is the SHA-256 output length
	DigestSize = 32

	// MaxPayloadSize bounds anything handed to Encrypt (100 MB)
	MaxPayloadSize = 100 * 1024 * 1024
)
