// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package client sends EBICS requests built by package request.

A Client binds a session and a registry to a transport. Each call runs the
full construction pipeline (build, validate, authenticate, serialize) and
posts the result to the bank:

	c, err := client.New(client.Config{
		URL:      "https://ebics.bank.example/ebicsweb",
		Session:  session.New("EBIXHOST"),
		Registry: registry,
	})
	result, err := c.Revoke(ctx)

Uploads return the encrypted order data segments in Result.Segments. Once
the bank has answered the initialisation message with a transaction id,
Transfer sends the segments:

	result, err := c.Upload(ctx, request.OrderTypeCreditTransfer, pain001)
	responses, err := c.Transfer(ctx, transactionID, result.Pending())

Responses are returned as raw bytes. Every message is recorded in a
reliability.RequestTracker and, when configured, in a Journal.
*/
package client
