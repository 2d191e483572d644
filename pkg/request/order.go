package request

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Order types
const (
	// OrderTypeRevocation suspends the subscriber (SPR)
	OrderTypeRevocation = "SPR"
	// OrderTypeCreditTransfer uploads a SEPA credit transfer (pain.001)
	OrderTypeCreditTransfer = "CCT"
	// OrderTypeDirectDebit uploads a SEPA direct debit (pain.008)
	OrderTypeDirectDebit = "CDD"
	// OrderTypeFileUpload uploads a file in a format named by FileParams
	OrderTypeFileUpload = "FUL"
)

// Order attributes. The first letter tells what the upload carries: O for
// order data plus signature, U for the signature only. "ZHNN" marks
// compressed (Z), hashed-and-encrypted (H) data without a distributed
// signature.
const (
	AttributeOrderData     = "OZHNN"
	AttributeSignatureOnly = "UZHNN"
)

var (
	orderTypePattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	attributePattern = regexp.MustCompile(`^[A-Z]{5}$`)
	orderIDPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
)

// OrderParams renders the order specific parameter block of OrderDetails
type OrderParams interface {
	appendTo(details *etree.Element)
}

// StandardParams is the empty StandardOrderParams block
type StandardParams struct{}

func (StandardParams) appendTo(details *etree.Element) {
	details.CreateElement("StandardOrderParams")
}

// Parameter is a generic key/value pair of FULOrderParams
type Parameter struct {
	Name  string
	Value string
	Type  string
}

// FileParams is the FULOrderParams block
type FileParams struct {
	FileFormat  string
	CountryCode string
	Test        bool
	Parameters  []Parameter
}

func (p FileParams) appendTo(details *etree.Element) {
	params := details.CreateElement("FULOrderParams")
	all := p.Parameters
	if p.Test {
		all = append(append([]Parameter(nil), all...), Parameter{Name: "TEST", Value: "TRUE"})
	}
	for _, param := range all {
		el := params.CreateElement("Parameter")
		el.CreateElement("Name").SetText(param.Name)
		value := el.CreateElement("Value")
		typ := param.Type
		if typ == "" {
			typ = "string"
		}
		value.CreateAttr("Type", typ)
		value.SetText(param.Value)
	}
	format := params.CreateElement("FileFormat")
	if p.CountryCode != "" {
		format.CreateAttr("CountryCode", p.CountryCode)
	}
	format.SetText(p.FileFormat)
}

// OrderSpec says which order is requested. Variants differ only in the
// spec and in the payload they sign.
type OrderSpec struct {
	Type      string
	Attribute string
	Params    OrderParams
}

// Revocation is the spec of the subscriber revocation order
var Revocation = OrderSpec{
	Type:      OrderTypeRevocation,
	Attribute: AttributeSignatureOnly,
	Params:    StandardParams{},
}

// Upload returns the spec of an upload order with standard parameters
func Upload(orderType string) OrderSpec {
	return OrderSpec{
		Type:      orderType,
		Attribute: AttributeOrderData,
		Params:    StandardParams{},
	}
}

// FileUpload returns the spec of a FUL order
func FileUpload(params FileParams) OrderSpec {
	return OrderSpec{
		Type:      OrderTypeFileUpload,
		Attribute: AttributeOrderData,
		Params:    params,
	}
}

// CarriesOrderData reports whether the attribute announces order data
func (s OrderSpec) CarriesOrderData() bool {
	return strings.HasPrefix(s.Attribute, "O")
}

// Validate checks the codes are well formed
func (s OrderSpec) Validate() error {
	if !orderTypePattern.MatchString(s.Type) {
		return fmt.Errorf("invalid order type %q", s.Type)
	}
	if !attributePattern.MatchString(s.Attribute) {
		return fmt.Errorf("invalid order attribute %q", s.Attribute)
	}
	if s.Params == nil {
		return fmt.Errorf("order %s has no parameter block", s.Type)
	}
	if p, ok := s.Params.(FileParams); ok && p.FileFormat == "" {
		return fmt.Errorf("order %s requires a file format", s.Type)
	}
	return nil
}

const (
	orderIDBase  = 10 * 36 * 36 * 36
	orderIDRange = 26 * 36 * 36 * 36
)

// FormatOrderID renders a sequence value as a four character order id: one
// letter followed by three letters or digits. The sequence wraps after
// 1,213,056 values.
func FormatOrderID(n uint64) string {
	return strings.ToUpper(strconv.FormatUint(orderIDBase+n%orderIDRange, 36))
}

// ValidOrderID reports whether id is a well formed order id
func ValidOrderID(id string) bool {
	return orderIDPattern.MatchString(id)
}
