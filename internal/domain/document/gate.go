package document

import (
	"sort"
	"time"
)

type Type string

const (
	TypeIdentityProof   Type = "identity-proof"
	TypeTaxID           Type = "tax-id"
	TypeIncomeProof     Type = "income-proof"
	TypeBankStatements  Type = "bank-statements"
	TypeEmploymentProof Type = "employment-proof"
	TypePhoto           Type = "photo"
	TypeAddressProof    Type = "address-proof"
	TypeTaxReturns      Type = "tax-returns"
)

// Catalog maps every accepted document type to whether it is required.
var Catalog = map[Type]bool{
	TypeIdentityProof:   true,
	TypeTaxID:           true,
	TypeIncomeProof:     true,
	TypeBankStatements:  true,
	TypeEmploymentProof: true,
	TypePhoto:           true,
	TypeAddressProof:    false,
	TypeTaxReturns:      false,
}

// catalogOrder fixes the presentation order of gate items.
var catalogOrder = []Type{
	TypeIdentityProof,
	TypeTaxID,
	TypeIncomeProof,
	TypeBankStatements,
	TypeEmploymentProof,
	TypePhoto,
	TypeAddressProof,
	TypeTaxReturns,
}

func ParseType(s string) (Type, bool) {
	t := Type(s)
	_, ok := Catalog[t]
	return t, ok
}

func RequiredTypes() []Type {
	out := make([]Type, 0, len(catalogOrder))
	for _, t := range catalogOrder {
		if Catalog[t] {
			out = append(out, t)
		}
	}
	return out
}

// Upload is what the gate needs to know about one uploaded document.
type Upload struct {
	Type       Type
	UploadedAt time.Time
}

type Completion struct {
	Type       Type       `json:"type"`
	Required   bool       `json:"required"`
	Uploaded   bool       `json:"uploaded"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

type GateResult struct {
	Complete        bool         `json:"complete"`
	RequiredTotal   int          `json:"required_total"`
	RequiredPresent int          `json:"required_present"`
	Items           []Completion `json:"items"`
}

// Missing lists the required types not yet uploaded.
func (r GateResult) Missing() []Type {
	var out []Type
	for _, it := range r.Items {
		if it.Required && !it.Uploaded {
			out = append(out, it.Type)
		}
	}
	return out
}

// Evaluate is the document gate: a pure function of the current uploads.
// Unknown types are ignored; for repeated types the latest upload wins.
func Evaluate(uploads []Upload) GateResult {
	latest := make(map[Type]time.Time, len(uploads))
	for _, u := range uploads {
		if _, known := Catalog[u.Type]; !known {
			continue
		}
		if cur, ok := latest[u.Type]; !ok || u.UploadedAt.After(cur) {
			latest[u.Type] = u.UploadedAt
		}
	}

	res := GateResult{Items: make([]Completion, 0, len(catalogOrder))}
	for _, t := range catalogOrder {
		c := Completion{Type: t, Required: Catalog[t]}
		if at, ok := latest[t]; ok {
			at := at
			c.Uploaded = true
			c.UploadedAt = &at
		}
		if c.Required {
			res.RequiredTotal++
			if c.Uploaded {
				res.RequiredPresent++
			}
		}
		res.Items = append(res.Items, c)
	}
	res.Complete = res.RequiredPresent == res.RequiredTotal
	return res
}

// UploadsOf projects stored documents into gate input, oldest first.
func UploadsOf(docs []Document) []Upload {
	out := make([]Upload, 0, len(docs))
	for _, d := range docs {
		out = append(out, Upload{Type: d.DocType, UploadedAt: d.UploadedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}
