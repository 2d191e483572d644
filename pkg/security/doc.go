// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package security implements the EBICS H004 cryptographic primitives.

# Encryption (E002)

Order data is compressed, then encrypted with a one-time AES-128 transaction
key in CBC mode under an all-zero IV with ANSI X9.23 padding. The transaction
key is wrapped for the bank with RSA PKCS#1 v1.5:

	suite := security.NewSuite()
	key, err := suite.TransactionKey()
	compressed, err := suite.Compress(data)
	encrypted, err := suite.Encrypt(compressed, key)
	wrapped, err := suite.WrapKey(key, bankKey)

The bank key is never trusted in-band. It is selected from the candidate keys
by comparing PublicKeyDigest against the hash pinned from the initialisation
letter:

	bankKey, err := security.ResolveByDigest(keys, pinned)

# Electronic Signature (A005, A006)

SignOrderData signs order data with RSA PKCS#1 v1.5 (A005) or RSA-PSS (A006)
over SHA-256. Any crypto.Signer works, including HSM backed keys.

# Authentication Signature (X002)

AuthSigner produces the XML-DSig signature carried in AuthSignature. All
elements with authenticate="true" are canonicalized with inclusive C14N 1.0
and digested together with SHA-256:

	signer, err := security.NewAuthSigner(authKey, nil)
	sig, err := signer.Sign(doc.Root())

# Errors

Failures wrap one of ErrRNG, ErrEncoding, ErrKeyResolution, ErrEncryption,
ErrCompression or ErrSignature so that callers can classify them with
errors.Is.
*/
package security
