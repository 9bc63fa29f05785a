package dhcpv4

import "fmt"

// Option is a single decoded TLV: a code plus its raw payload. Interpreting
// the payload as a structured value is a separate step (Value), so a
// packet can be decoded and re-encoded byte-for-byte even when it carries
// an option this registry does not recognize.
type Option struct {
	Code OptionCode
	Data []byte
}

// Value interprets o's raw bytes according to its registry grammar. An
// option whose code is not registered, or whose bytes do not fit its
// grammar, reports an *Error so callers can distinguish "unknown option"
// from "known option, garbage bytes".
func (o Option) Value() (any, error) {
	def, ok := LookupCode(o.Code)
	if !ok {
		return nil, newError(UnknownOption, "Option.Value", fmt.Errorf("option code %d is not registered", o.Code))
	}
	v, err := decodeValue(def, o.Data)
	if err != nil {
		return nil, newError(InvalidValue, "Option.Value", err)
	}
	return v, nil
}

// Bytes renders o as it appears on the wire: a 1-byte code, a 1-byte
// length, then the payload. OptionPad and OptionEnd carry no length or
// payload octet, per RFC 2132 §2.
func (o Option) Bytes() ([]byte, error) {
	if o.Code == OptionPad || o.Code == OptionEnd {
		return []byte{byte(o.Code)}, nil
	}
	if len(o.Data) > 255 {
		return nil, newError(InvalidValue, "Option.Bytes", fmt.Errorf("option %d: %d bytes exceeds the 255-byte single-TLV limit", o.Code, len(o.Data)))
	}
	buf := make([]byte, 2+len(o.Data))
	buf[0] = byte(o.Code)
	buf[1] = byte(len(o.Data))
	copy(buf[2:], o.Data)
	return buf, nil
}

// DecodeOne reads a single code+length+data TLV starting at data[0]. It
// returns the option and the number of bytes consumed. PAD and END are
// returned as zero-length options; callers loop on PAD and stop on END as
// DecodeOptionList does.
func DecodeOne(data []byte) (Option, int, error) {
	if len(data) == 0 {
		return Option{}, 0, newError(TruncatedOption, "DecodeOne", fmt.Errorf("empty buffer"))
	}
	code := OptionCode(data[0])
	if code == OptionPad || code == OptionEnd {
		return Option{Code: code}, 1, nil
	}
	if len(data) < 2 {
		return Option{}, 0, newError(TruncatedOption, "DecodeOne", fmt.Errorf("option %d: missing length byte", code))
	}
	n := int(data[1])
	if len(data) < 2+n {
		return Option{}, 0, newError(TruncatedOption, "DecodeOne", fmt.Errorf("option %d: declared length %d exceeds remaining %d bytes", code, n, len(data)-2))
	}
	payload := make([]byte, n)
	copy(payload, data[2:2+n])
	return Option{Code: code, Data: payload}, 2 + n, nil
}

// FromValue looks up name in the registry and encodes value per its
// grammar, returning the resulting Option. This is the inverse of Value:
// FromValue(name, v) produces an Option whose Value() round-trips to
// something equal to v.
func FromValue(name string, value any) (Option, error) {
	def, ok := LookupName(name)
	if !ok {
		return Option{}, newError(UnknownOption, "FromValue", fmt.Errorf("unknown option name %q", name))
	}
	data, err := encodeValue(def, value)
	if err != nil {
		return Option{}, newError(InvalidValue, "FromValue", err)
	}
	return Option{Code: def.Code, Data: data}, nil
}

// ValueToOption is an alias for FromValue kept for readers coming from the
// "value -> option" naming used elsewhere in this package's docs.
func ValueToOption(name string, value any) (Option, error) {
	return FromValue(name, value)
}

// ShortValueToOption looks up code in the registry and encodes value under
// its canonical name, for callers that only have the numeric code handy
// (e.g. a message-type constant) rather than the registry's option name.
func ShortValueToOption(code OptionCode, value any) (Option, error) {
	def, ok := LookupCode(code)
	if !ok {
		return Option{}, newError(UnknownOption, "ShortValueToOption", fmt.Errorf("option code %d is not registered", code))
	}
	return FromValue(def.Name, value)
}

// ValueToBytes is FromValue followed by Bytes, for callers that only want
// the wire-encoded TLV.
func ValueToBytes(name string, value any) ([]byte, error) {
	opt, err := FromValue(name, value)
	if err != nil {
		return nil, err
	}
	return opt.Bytes()
}
