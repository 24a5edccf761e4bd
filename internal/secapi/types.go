package secapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Filing is one Form 3/4/5 document as returned by the search endpoint.
// Every nested level has zero-value defaults, so a missing object or field
// never fails decoding; only a structurally wrong shape (an array where an
// object belongs) does.
type Filing struct {
	Issuer             Issuer         `json:"issuer"`
	ReportingOwner     ReportingOwner `json:"reportingOwner"`
	PeriodOfReport     Text           `json:"periodOfReport"`
	FiledAt            Text           `json:"filedAt"`
	NonDerivativeTable Table          `json:"nonDerivativeTable"`
	DerivativeTable    Table          `json:"derivativeTable"`
}

type Issuer struct {
	CIK           Text `json:"cik"`
	Name          Text `json:"name"`
	TradingSymbol Text `json:"tradingSymbol"`
}

type ReportingOwner struct {
	CIK          Text         `json:"cik"`
	Name         Text         `json:"name"`
	Relationship Relationship `json:"relationship"`
}

type Relationship struct {
	IsDirector        Flag `json:"isDirector"`
	IsOfficer         Flag `json:"isOfficer"`
	OfficerTitle      Text `json:"officerTitle"`
	IsTenPercentOwner Flag `json:"isTenPercentOwner"`
	IsOther           Flag `json:"isOther"`
	OtherText         Text `json:"otherText"`
}

// Table holds raw child entries so each one can be decoded, and rejected,
// on its own.
type Table struct {
	Transactions []json.RawMessage `json:"transactions"`
}

type Entry struct {
	SecurityTitle   Text    `json:"securityTitle"`
	TransactionDate Text    `json:"transactionDate"`
	Coding          Coding  `json:"coding"`
	Amounts         Amounts `json:"amounts"`
}

type Coding struct {
	FormType Text `json:"formType"`
	Code     Text `json:"code"`
}

type Amounts struct {
	Shares               Number `json:"shares"`
	PricePerShare        Number `json:"pricePerShare"`
	AcquiredDisposedCode Text   `json:"acquiredDisposedCode"`
}

// Number decodes JSON numbers and numeric strings. Anything else, null
// included, leaves Valid false.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number{Value: f, Valid: true}
		}
		return nil
	}
	var f float64
	if json.Unmarshal(b, &f) == nil {
		*n = Number{Value: f, Valid: true}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Text decodes strings and renders numbers and booleans as text; any
// other shape decodes as empty.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if json.Unmarshal(b, &s) == nil {
			*t = Text(s)
		}
	case '{', '[', 'n':
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Flag decodes booleans, "true"/"1" strings and 0/1 numbers.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = false
	s := strings.Trim(strings.ToLower(string(bytes.TrimSpace(b))), `"`)
	switch s {
	case "true", "1", "yes":
		*f = true
	}
	return nil
}
