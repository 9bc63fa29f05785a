package dhcpv4

import "fmt"

// OptionList is an ordered container of Options with a uniqueness
// invariant: it holds at most one entry per code. Appending a duplicate
// code replaces the existing entry in its current slot rather than
// appending a second one, so iteration order reflects first-seen
// position even after later updates.
//
// PAD is pure alignment and is dropped on decode rather than kept as an
// entry; END is implicit, auto-consumed by DecodeOptionList and
// auto-emitted by Encode. Neither ever appears in slots.
type OptionList struct {
	slots []Option
	index map[OptionCode]int
}

// NewOptionList returns an empty list ready for Append.
func NewOptionList() *OptionList {
	return &OptionList{index: make(map[OptionCode]int)}
}

// ByCode returns the option with the given code and true, or a zero
// Option and false if no such option is present.
func (l *OptionList) ByCode(code OptionCode) (Option, bool) {
	if l == nil {
		return Option{}, false
	}
	i, ok := l.index[code]
	if !ok {
		return Option{}, false
	}
	return l.slots[i], true
}

// Has reports whether code is present.
func (l *OptionList) Has(code OptionCode) bool {
	_, ok := l.ByCode(code)
	return ok
}

// Len returns the number of distinct option codes held.
func (l *OptionList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.slots)
}

// All returns the options in insertion order, with replacements retaining
// their original slot. The returned slice is a copy; mutating it does not
// affect the list.
func (l *OptionList) All() []Option {
	if l == nil {
		return nil
	}
	out := make([]Option, len(l.slots))
	copy(out, l.slots)
	return out
}

// Append inserts opt, replacing any existing entry with the same code in
// its current slot. PAD and END are rejected: callers never manage the
// sentinel options directly.
func (l *OptionList) Append(opt Option) error {
	if opt.Code == OptionPad || opt.Code == OptionEnd {
		return newError(InvalidValue, "OptionList.Append", fmt.Errorf("code %d is a sentinel, not a storable option", opt.Code))
	}
	if i, ok := l.index[opt.Code]; ok {
		l.slots[i] = opt
		return nil
	}
	l.index[opt.Code] = len(l.slots)
	l.slots = append(l.slots, opt)
	return nil
}

// AppendStrict is Append but reports DuplicateOptionCode instead of
// replacing when code is already present, for callers that want strict
// mode (the spec's "only when strict mode is requested" default-replace
// carve-out).
func (l *OptionList) AppendStrict(opt Option) error {
	if opt.Code == OptionPad || opt.Code == OptionEnd {
		return newError(InvalidValue, "OptionList.AppendStrict", fmt.Errorf("code %d is a sentinel, not a storable option", opt.Code))
	}
	if _, ok := l.index[opt.Code]; ok {
		return newError(DuplicateOptionCode, "OptionList.AppendStrict", fmt.Errorf("option code %d already present", opt.Code))
	}
	l.index[opt.Code] = len(l.slots)
	l.slots = append(l.slots, opt)
	return nil
}

// Delete removes the entry for code, if any, shifting later slots down
// and reindexing them.
func (l *OptionList) Delete(code OptionCode) {
	i, ok := l.index[code]
	if !ok {
		return
	}
	l.slots = append(l.slots[:i], l.slots[i+1:]...)
	delete(l.index, code)
	for c, j := range l.index {
		if j > i {
			l.index[c] = j - 1
		}
	}
}

// Clone returns a deep copy of l.
func (l *OptionList) Clone() *OptionList {
	out := NewOptionList()
	for _, opt := range l.All() {
		data := make([]byte, len(opt.Data))
		copy(data, opt.Data)
		out.Append(Option{Code: opt.Code, Data: data})
	}
	return out
}

// Encode renders the list as a sequence of TLVs terminated by OptionEnd.
// An option whose payload exceeds 255 bytes is split into multiple TLVs
// of the same code (RFC 3396); split points are arbitrary, chosen to fill
// each TLV to 255 bytes.
func (l *OptionList) Encode() []byte {
	size := 1
	for _, opt := range l.All() {
		n := len(opt.Data)
		if n == 0 {
			size += 2
			continue
		}
		size += ((n + 254) / 255) * 2
		size += n
	}
	buf := make([]byte, 0, size)
	for _, opt := range l.All() {
		data := opt.Data
		if len(data) == 0 {
			buf = append(buf, byte(opt.Code), 0)
			continue
		}
		for len(data) > 0 {
			chunk := data
			if len(chunk) > 255 {
				chunk = chunk[:255]
			}
			buf = append(buf, byte(opt.Code), byte(len(chunk)))
			buf = append(buf, chunk...)
			data = data[len(chunk):]
		}
	}
	buf = append(buf, byte(OptionEnd))
	return buf
}

// DecodeOptionList parses a sequence of TLVs, dropping PAD, stopping at
// END, and concatenating consecutive TLVs of the same code (RFC 3396)
// into a single entry before storing it. Each entry's final code must be
// unique: a non-consecutive repeat of a code already seen is rejected
// with DuplicateOptionCode, since RFC 3396 only licenses adjacency, not
// an arbitrary second occurrence later in the option area.
func DecodeOptionList(data []byte) (*OptionList, error) {
	l := NewOptionList()
	i := 0
	var pending OptionCode
	var pendingData []byte
	havePending := false

	flush := func() error {
		if !havePending {
			return nil
		}
		if l.Has(pending) {
			return newError(DuplicateOptionCode, "DecodeOptionList", fmt.Errorf("option code %d repeated non-consecutively", pending))
		}
		if err := l.Append(Option{Code: pending, Data: pendingData}); err != nil {
			return err
		}
		havePending = false
		pendingData = nil
		return nil
	}

	for i < len(data) {
		code := OptionCode(data[i])
		if code == OptionPad {
			i++
			continue
		}
		if code == OptionEnd {
			if err := flush(); err != nil {
				return nil, err
			}
			return l, nil
		}
		if i+1 >= len(data) {
			return nil, newError(TruncatedOption, "DecodeOptionList", fmt.Errorf("option %d: missing length byte", code))
		}
		n := int(data[i+1])
		if i+2+n > len(data) {
			return nil, newError(TruncatedOption, "DecodeOptionList", fmt.Errorf("option %d: declared length %d exceeds remaining %d bytes", code, n, len(data)-i-2))
		}
		chunk := data[i+2 : i+2+n]
		i += 2 + n

		if havePending && code == pending {
			pendingData = append(pendingData, chunk...)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		pending = code
		pendingData = append([]byte(nil), chunk...)
		havePending = true
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return l, nil
}
