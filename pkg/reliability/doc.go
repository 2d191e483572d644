// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package reliability provides replay protection and request tracking for an
EBICS client.

# Nonce Tracking

Every request carries a fresh nonce. NonceTracker remembers the nonces
issued per subscriber and rejects a repeated one, which would otherwise let
the bank treat the request as a replay:

	nonces := reliability.NewNonceTracker(24*time.Hour, time.Hour)
	defer nonces.Close()

	created := request.NewRevocation(sess, registry, request.WithNonceGuard(nonces))

# Request Tracking

RequestTracker follows each request from construction until the bank
answers. It does not resend requests; retries are left to the caller.

	tracker.Track(id, "SPR", orderID)
	tracker.MarkSending(id)
	tracker.RecordResponse(id, body)
*/
package reliability
