// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package request builds EBICS H004 ebicsRequest documents.

A request moves forward through four states. Each transition returns a new
value and leaves the previous one usable:

	created := request.NewRevocation(sess, registry)
	built, err := created.Build(ctx)        // Created -> Built
	valid, err := built.Validate()          // Built -> Validated
	valid, err = valid.Authenticate(authKey) // adds AuthSignature
	wire, err := valid.Serialize()          // Validated -> Serialized
	send(wire.Bytes())

Build signs the payload, draws the nonce, seals the envelope for the bank
encryption key matching the pinned digest, fetches the next order id and
assembles the header. Any failure is returned as a *BuildError naming the
stage; no partial document is ever returned.

# Variants

All order types share the same skeleton and differ only in their OrderSpec
and payload:

  - NewRevocation: SPR, attribute UZHNN, signature over a placeholder
  - NewUpload: CCT, CDD and other standard uploads, attribute OZHNN
  - NewFileUpload: FUL with FULOrderParams

Uploads continue with one NewTransfer message per order data segment.
*/
package request
