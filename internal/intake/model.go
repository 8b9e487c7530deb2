package intake

import (
	"encoding/json"
	"fmt"
	"time"
)

// CompanySize is one of the fixed headcount buckets. The empty value means "not given".
type CompanySize string

const (
	CompanySizeUnset    CompanySize = ""
	CompanySize1To10    CompanySize = "1-10"
	CompanySize11To50   CompanySize = "11-50"
	CompanySize51To200  CompanySize = "51-200"
	CompanySize201To500 CompanySize = "201-500"
	CompanySize500Plus  CompanySize = "500+"
)

var companySizes = []CompanySize{
	CompanySize1To10,
	CompanySize11To50,
	CompanySize51To200,
	CompanySize201To500,
	CompanySize500Plus,
}

// CompanySizes lists the selectable buckets in display order.
func CompanySizes() []CompanySize {
	return append([]CompanySize(nil), companySizes...)
}

// Valid reports whether s is unset or one of the known buckets.
func (s CompanySize) Valid() bool {
	if s == CompanySizeUnset {
		return true
	}
	for _, known := range companySizes {
		if s == known {
			return true
		}
	}
	return false
}

// PainPoint is a label from the fixed catalog of operational problems.
type PainPoint string

const (
	PainInventoryFragmentation PainPoint = "Inventory Fragmentation"
	PainManualOrderRouting     PainPoint = "Manual Order Routing"
	PainChannelSyncDelays      PainPoint = "Channel Sync Delays"
	PainFulfillmentErrors      PainPoint = "Fulfillment Errors"
	PainReturnsOverhead        PainPoint = "Returns Overhead"
	PainReportingBlindSpots    PainPoint = "Reporting Blind Spots"
)

var painPoints = []PainPoint{
	PainInventoryFragmentation,
	PainManualOrderRouting,
	PainChannelSyncDelays,
	PainFulfillmentErrors,
	PainReturnsOverhead,
	PainReportingBlindSpots,
}

// PainPoints lists the catalog in display order.
func PainPoints() []PainPoint {
	return append([]PainPoint(nil), painPoints...)
}

func painPointIndex(p PainPoint) int {
	for i, known := range painPoints {
		if p == known {
			return i
		}
	}
	return -1
}

// Valid reports whether p belongs to the catalog.
func (p PainPoint) Valid() bool {
	return painPointIndex(p) >= 0
}

// PainPointSet holds selected pain points in catalog order without duplicates.
type PainPointSet struct {
	items []PainPoint
}

// NewPainPointSet builds a set from labels, rejecting unknown ones. Repeats collapse.
func NewPainPointSet(labels ...PainPoint) (PainPointSet, error) {
	var set PainPointSet
	for _, label := range labels {
		if !label.Valid() {
			return PainPointSet{}, fmt.Errorf("%w: %q", ErrUnknownPainPoint, label)
		}
		if !set.Has(label) {
			set.insert(label)
		}
	}
	return set, nil
}

// Has reports membership.
func (s PainPointSet) Has(p PainPoint) bool {
	for _, item := range s.items {
		if item == p {
			return true
		}
	}
	return false
}

// Toggle adds p when absent and removes it when present.
func (s *PainPointSet) Toggle(p PainPoint) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPainPoint, p)
	}
	for i, item := range s.items {
		if item == p {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return nil
		}
	}
	s.insert(p)
	return nil
}

func (s *PainPointSet) insert(p PainPoint) {
	idx := painPointIndex(p)
	pos := len(s.items)
	for i, item := range s.items {
		if painPointIndex(item) > idx {
			pos = i
			break
		}
	}
	next := make([]PainPoint, 0, len(s.items)+1)
	next = append(next, s.items[:pos]...)
	next = append(next, p)
	next = append(next, s.items[pos:]...)
	s.items = next
}

// Len returns the number of selected labels.
func (s PainPointSet) Len() int { return len(s.items) }

// Slice returns a copy of the selected labels in catalog order. Never nil.
func (s PainPointSet) Slice() []PainPoint {
	out := make([]PainPoint, len(s.items))
	copy(out, s.items)
	return out
}

// Strings returns the labels as plain strings, for storage drivers.
func (s PainPointSet) Strings() []string {
	out := make([]string, len(s.items))
	for i, item := range s.items {
		out[i] = string(item)
	}
	return out
}

// Equal reports whether both sets hold the same labels.
func (s PainPointSet) Equal(other PainPointSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

func (s PainPointSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *PainPointSet) UnmarshalJSON(data []byte) error {
	var labels []PainPoint
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	set, err := NewPainPointSet(labels...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Draft is the in-progress submission owned by a wizard.
type Draft struct {
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	CompanyName string       `json:"company_name"`
	Website     string       `json:"website"`
	CompanySize CompanySize  `json:"company_size"`
	Role        string       `json:"role"`
	PainPoints  PainPointSet `json:"pain_points"`
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	d.PainPoints = PainPointSet{items: d.PainPoints.Slice()}
	return d
}

// Equal compares every field, including the pain point set.
func (d Draft) Equal(other Draft) bool {
	return d.FullName == other.FullName &&
		d.Email == other.Email &&
		d.CompanyName == other.CompanyName &&
		d.Website == other.Website &&
		d.CompanySize == other.CompanySize &&
		d.Role == other.Role &&
		d.PainPoints.Equal(other.PainPoints)
}

// Record is a persisted waitlist entry. It is never updated after creation.
type Record struct {
	ID          string       `json:"id"`
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	CompanyName string       `json:"company_name"`
	Website     string       `json:"website"`
	CompanySize CompanySize  `json:"company_size"`
	Role        string       `json:"role"`
	PainPoints  PainPointSet `json:"pain_points"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewRecord freezes a draft into a record.
func NewRecord(id string, d Draft, createdAt time.Time) *Record {
	d = d.Clone()
	return &Record{
		ID:          id,
		FullName:    d.FullName,
		Email:       d.Email,
		CompanyName: d.CompanyName,
		Website:     d.Website,
		CompanySize: d.CompanySize,
		Role:        d.Role,
		PainPoints:  d.PainPoints,
		CreatedAt:   createdAt,
	}
}

// Draft returns the user-supplied fields of the record.
func (r *Record) Draft() Draft {
	return Draft{
		FullName:    r.FullName,
		Email:       r.Email,
		CompanyName: r.CompanyName,
		Website:     r.Website,
		CompanySize: r.CompanySize,
		Role:        r.Role,
		PainPoints:  PainPointSet{items: r.PainPoints.Slice()},
	}
}

// FieldPatch carries optional field edits. Nil pointers leave fields untouched.
type FieldPatch struct {
	FullName    *string      `json:"full_name,omitempty"`
	Email       *string      `json:"email,omitempty"`
	CompanyName *string      `json:"company_name,omitempty"`
	Website     *string      `json:"website,omitempty"`
	CompanySize *CompanySize `json:"company_size,omitempty"`
	Role        *string      `json:"role,omitempty"`
}

// stepOwning returns the wizard step whose form holds the patched fields,
// or -1 when the patch is empty or spans several steps.
func (p FieldPatch) stepOwning() (step int, mixed bool) {
	identity := p.FullName != nil || p.Email != nil
	company := p.CompanyName != nil || p.Website != nil || p.CompanySize != nil || p.Role != nil
	switch {
	case identity && company:
		return -1, true
	case identity:
		return 0, false
	case company:
		return 1, false
	default:
		return -1, false
	}
}

func (p FieldPatch) apply(d *Draft) {
	if p.FullName != nil {
		d.FullName = *p.FullName
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.CompanyName != nil {
		d.CompanyName = *p.CompanyName
	}
	if p.Website != nil {
		d.Website = *p.Website
	}
	if p.CompanySize != nil {
		d.CompanySize = *p.CompanySize
	}
	if p.Role != nil {
		d.Role = *p.Role
	}
}
