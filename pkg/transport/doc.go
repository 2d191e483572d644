// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport posts EBICS requests to a bank over HTTPS.

EBICS requires TLS; the client negotiates TLS 1.2 or 1.3:

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

For TLS 1.2, the following cipher suites are recommended:
  - TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
  - TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256

# Client Usage

	client := transport.NewHTTPSClient(nil)
	response, err := client.Send(ctx, "https://ebics.bank.example/ebicsweb", wire.Bytes())

Send returns the raw response body. A non-200 status is reported as a
*StatusError. Responses are neither parsed nor retried here.
*/
package transport
