// Package signature builds the UserSignatureData document that carries the
// subscriber's electronic signature (A005/A006) inside an EBICS request.
//
// A Payload must pass Validate before it can be encrypted: the envelope
// builder only accepts the Validated type.
package signature
