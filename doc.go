// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package goebics builds EBICS H004 client requests: signed, encrypted and
authenticated XML documents ready to be posted to a bank.

# Overview

go-ebics turns an order (a subscriber revocation, a credit transfer upload,
a file upload) into the exact bytes an EBICS 2.5 bank server expects. Every
request passes through a fixed pipeline:

	Created -> Built -> Validated -> (Authenticated) Validated -> Serialized

Each step returns a new value; a failed step leaves its input usable.

# Specifications Implemented

  - EBICS 2.5 (H004) transaction initialisation and transfer phases
  - A005 / A006 electronic signatures (RSA PKCS#1 v1.5 / PSS over SHA-256)
  - X002 authentication signatures (XML-DSig, inclusive C14N, RSA-SHA256)
  - E002 hybrid encryption (AES-128-CBC with an RSA wrapped transaction key)

# Package Structure

	github.com/sirosfoundation/go-ebics/pkg/request     - Request state machine and order variants
	github.com/sirosfoundation/go-ebics/pkg/session     - Session, identity and the key registry
	github.com/sirosfoundation/go-ebics/pkg/signature   - Signed payload (UserSignatureData)
	github.com/sirosfoundation/go-ebics/pkg/envelope    - Hybrid envelope and order data segments
	github.com/sirosfoundation/go-ebics/pkg/security    - Crypto primitives and the X002 signer
	github.com/sirosfoundation/go-ebics/pkg/compression - zlib compression
	github.com/sirosfoundation/go-ebics/pkg/reliability - Nonce replay guard and request tracking
	github.com/sirosfoundation/go-ebics/pkg/transport   - HTTPS transport with TLS 1.2/1.3
	github.com/sirosfoundation/go-ebics/pkg/client      - Build, authenticate and send

# Quick Start

To suspend a subscriber:

	registry := session.NewMemoryRegistry(
	    session.Identity{UserID: "USER1", PartnerID: "PARTNER1"},
	    digests,
	    session.WithBankKeys(bankAuthKey, bankEncKey),
	    session.WithSignatureKey(userSigKey),
	    session.WithAuthenticationKey(userAuthKey),
	)

	c, _ := client.New(client.Config{
	    URL:      "https://ebics.bank.example/ebicsweb",
	    Session:  session.New("EBIXHOST"),
	    Registry: registry,
	})
	result, err := c.Revoke(ctx)

The cmd/ebics command wraps the same steps behind a YAML configuration,
file or PKCS#11 keystores and an optional MongoDB journal.

# Security Features

  - Bank keys are pinned by SHA-256 digest; a key is only used if its digest
    matches the one from the initialisation letter
  - A fresh 128-bit transaction key per request, cleared after use
  - A fresh 128-bit nonce per request, optionally checked against a replay
    window
  - Order ids come from a strictly increasing per-partner counter

# License

BSD-2-Clause License
*/
package goebics
