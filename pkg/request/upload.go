package request

import (
	"slices"

	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// NewUpload creates an upload request for an order type with standard
// parameters, such as CCT or CDD. The order data is signed, encrypted and
// split into segments for the transfer phase.
func NewUpload(sess session.Session, registry session.Registry, orderType string, data []byte, opts ...Option) *Created {
	return New(sess, registry, Upload(orderType), slices.Concat(opts, []Option{WithOrderData(data)})...)
}

// NewFileUpload creates a FUL request
func NewFileUpload(sess session.Session, registry session.Registry, params FileParams, data []byte, opts ...Option) *Created {
	return New(sess, registry, FileUpload(params), slices.Concat(opts, []Option{WithOrderData(data)})...)
}
