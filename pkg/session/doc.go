// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package session holds the read-only context a request is built in: the
target bank, the subscriber identity, the pinned bank key digests and the
order id sequence.

The Registry interface is the boundary to wherever that state lives. The
request builders only read from it, except for NextOrderID which must be an
atomic fetch-and-increment:

	reg := session.NewMemoryRegistry(
	    session.Identity{UserID: "U1", PartnerID: "P1"},
	    digests,
	    session.WithBankKeys(authKey, encKey),
	    session.WithSignatureKey(userKey),
	)

MemoryRegistry keeps everything in process and is suitable for tests and
single-process tools. Persistent order id sequences are provided by the
MongoDB store in internal/storage/mongodb, plugged in with WithOrderIDs.
*/
package session
