// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package envelope implements the E002 hybrid encryption of an EBICS request.

For every transaction a fresh AES-128 transaction key is drawn. The signed
payload (and, for uploads, the order data) is compressed and encrypted under
that key, and the key itself is wrapped for the bank's encryption key. The
bank key is selected by its pinned digest; a key that does not match is
never used.

	b := envelope.NewBuilder(security.NewSuite(), registry)
	env, err := b.Build(ctx, validated, digests.Encryption)

The transaction key is cleared from memory once it has been wrapped. Open
and OpenOrderData perform the bank side of the exchange and are used to
check envelopes locally.
*/
package envelope
