package csl

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/citeproc-go/engine/cerr"
)

// Compile parses the (deliberately small) CSL XML subset this engine
// understands into a Style. It is not a general CSL validator — full
// schema validation is out of scope (spec.md §1) — but it does perform
// the one piece of structural validation the evaluator depends on:
// rejecting cyclic or dangling macro references so later stages only
// ever see a DAG.
func Compile(xmlDoc string) (*Style, error) {
	dec := xml.NewDecoder(strings.NewReader(xmlDoc))
	c := &compiler{dec: dec, style: &Style{
		Macros:           make(map[string]Element),
		NearNoteDistance: 5,
	}}
	if err := c.run(); err != nil {
		return nil, err
	}
	if err := validateMacroDAG(c.style.Macros); err != nil {
		return nil, err
	}
	return c.style, nil
}

type compiler struct {
	dec   *xml.Decoder
	style *Style
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attrDefault(se xml.StartElement, name, def string) string {
	if v, ok := attr(se, name); ok {
		return v
	}
	return def
}

func attrBool(se xml.StartElement, name string) bool {
	v, _ := attr(se, name)
	return v == "true" || v == "1"
}

func attrInt(se xml.StartElement, name string, def int) int {
	v, ok := attr(se, name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *compiler) run() error {
	for {
		tok, err := c.dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "style":
			c.style.DefaultLocale = attrDefault(se, "default-locale", "en-US")
		case "macro":
			name, _ := attr(se, "name")
			children, err := c.children(se.Name.Local)
			if err != nil {
				return err
			}
			c.style.Macros[name] = Group{Children: children}
		case "citation":
			if err := c.compileCitation(se); err != nil {
				return err
			}
		case "bibliography":
			if err := c.compileBibliography(se); err != nil {
				return err
			}
		}
	}
	if c.style.CitationLayout.Children == nil && c.style.CitationLayout.Delimiter == "" {
		return cerr.New(cerr.StyleInvalid, "style has no <citation><layout> element")
	}
	return nil
}

func (c *compiler) compileCitation(se xml.StartElement) error {
	c.style.Collapse = attrDefault(se, "collapse", "")
	c.style.CiteGroupDelimiter = attrDefault(se, "cite-group-delimiter", "")
	c.style.NearNoteDistance = attrInt(se, "near-note-distance", c.style.NearNoteDistance)
	c.style.DisambiguateAddNames = attrBool(se, "disambiguate-add-names")
	c.style.DisambiguateAddGivenName = attrBool(se, "disambiguate-add-givenname")
	c.style.DisambiguateAddYearSuffix = attrBool(se, "disambiguate-add-year-suffix")
	c.style.GivenNameDisambiguationRule = attrDefault(se, "givenname-disambiguation-rule", "by-cite")

	for {
		tok, err := c.dec.Token()
		if err != nil {
			return cerr.New(cerr.StyleInvalid, "unexpected end of document inside <citation>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sort":
				keys, err := c.compileSort()
				if err != nil {
					return err
				}
				c.style.CitationSort = keys
			case "layout":
				layout, err := c.compileLayout(t)
				if err != nil {
					return err
				}
				c.style.CitationLayout = layout
			default:
				if err := c.skip(t.Name.Local); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "citation" {
				return nil
			}
		}
	}
}

func (c *compiler) compileBibliography(se xml.StartElement) error {
	c.style.HangingIndent = attrBool(se, "hanging-indent")
	c.style.SubsequentAuthorSubstitute = attrDefault(se, "subsequent-author-substitute", "")
	var layout Layout
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return cerr.New(cerr.StyleInvalid, "unexpected end of document inside <bibliography>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sort":
				keys, err := c.compileSort()
				if err != nil {
					return err
				}
				c.style.BibliographySort = keys
			case "layout":
				l, err := c.compileLayout(t)
				if err != nil {
					return err
				}
				layout = l
			default:
				if err := c.skip(t.Name.Local); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "bibliography" {
				c.style.BibliographyLayout = &layout
				return nil
			}
		}
	}
}

func (c *compiler) compileSort() ([]SortKey, error) {
	var keys []SortKey
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, cerr.New(cerr.StyleInvalid, "unexpected end of document inside <sort>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "key" {
				variable, _ := attr(t, "variable")
				macro, _ := attr(t, "macro")
				asc := attrDefault(t, "sort", "ascending") != "descending"
				keys = append(keys, SortKey{Variable: variable, Macro: macro, Ascending: asc})
				if err := c.skip("key"); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "sort" {
				return keys, nil
			}
		}
	}
}

func (c *compiler) compileLayout(se xml.StartElement) (Layout, error) {
	layout := Layout{
		Delimiter: attrDefault(se, "delimiter", ""),
		Prefix:    attrDefault(se, "prefix", ""),
		Suffix:    attrDefault(se, "suffix", ""),
	}
	children, err := c.children("layout")
	if err != nil {
		return Layout{}, err
	}
	layout.Children = children
	return layout, nil
}

// children reads and compiles child elements until the matching end tag
// for the element named tagName, which must already have been consumed
// as a StartElement by the caller.
func (c *compiler) children(tagName string) ([]Element, error) {
	var out []Element
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, cerr.New(cerr.StyleInvalid, "unexpected end of document inside <%s>", tagName)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el, err := c.compileElement(t)
			if err != nil {
				return nil, err
			}
			if el != nil {
				out = append(out, el)
			}
		case xml.EndElement:
			if t.Name.Local == tagName {
				return out, nil
			}
		}
	}
}

// skip consumes and discards everything up to and including the matching
// end tag, for elements this compiler doesn't (yet) interpret.
func (c *compiler) skip(tagName string) error {
	depth := 1
	for depth > 0 {
		tok, err := c.dec.Token()
		if err != nil {
			return cerr.New(cerr.StyleInvalid, "unexpected end of document while skipping <%s>", tagName)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == tagName {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == tagName {
				depth--
			}
		}
	}
	return nil
}

func (c *compiler) compileElement(se xml.StartElement) (Element, error) {
	switch se.Name.Local {
	case "text":
		el := Text{
			Value:    attrDefault(se, "value", ""),
			Variable: attrDefault(se, "variable", ""),
			Term:     attrDefault(se, "term", ""),
			Macro:    attrDefault(se, "macro", ""),
			Prefix:   attrDefault(se, "prefix", ""),
			Suffix:   attrDefault(se, "suffix", ""),
			TextCase: attrDefault(se, "text-case", ""),
			Quotes:   attrBool(se, "quotes"),
		}
		return el, c.skip("text")
	case "label":
		el := Label{
			Variable: attrDefault(se, "variable", ""),
			Form:     attrDefault(se, "form", "long"),
			Plural:   attrDefault(se, "plural", "contextual"),
		}
		return el, c.skip("label")
	case "number":
		el := Number{
			Variable: attrDefault(se, "variable", ""),
			Form:     attrDefault(se, "form", "numeric"),
			Prefix:   attrDefault(se, "prefix", ""),
			Suffix:   attrDefault(se, "suffix", ""),
		}
		return el, c.skip("number")
	case "date":
		return c.compileDate(se)
	case "names":
		return c.compileNames(se)
	case "group":
		children, err := c.children("group")
		if err != nil {
			return nil, err
		}
		return Group{
			Children:  children,
			Delimiter: attrDefault(se, "delimiter", ""),
			Prefix:    attrDefault(se, "prefix", ""),
			Suffix:    attrDefault(se, "suffix", ""),
		}, nil
	case "choose":
		return c.compileChoose()
	default:
		return nil, c.skip(se.Name.Local)
	}
}

func (c *compiler) compileDate(se xml.StartElement) (Element, error) {
	d := Date{
		Variable: attrDefault(se, "variable", ""),
		Form:     attrDefault(se, "form", "numeric"),
		Prefix:   attrDefault(se, "prefix", ""),
		Suffix:   attrDefault(se, "suffix", ""),
	}
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, cerr.New(cerr.StyleInvalid, "unexpected end of document inside <date>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "date-part" {
				name, _ := attr(t, "name")
				d.Parts = append(d.Parts, name)
				if err := c.skip("date-part"); err != nil {
					return nil, err
				}
			} else if err := c.skip(t.Name.Local); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "date" {
				return d, nil
			}
		}
	}
}

func (c *compiler) compileNames(se xml.StartElement) (Element, error) {
	n := Names{
		Variables: strings.Fields(attrDefault(se, "variable", "")),
		Delimiter: attrDefault(se, "delimiter", ""),
		Prefix:    attrDefault(se, "prefix", ""),
		Suffix:    attrDefault(se, "suffix", ""),
		Name:      NameFormatting{Form: "long", SortOrder: "display", And: "text"},
	}
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, cerr.New(cerr.StyleInvalid, "unexpected end of document inside <names>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				n.Name = NameFormatting{
					InitializeWith:            attrDefault(t, "initialize-with", ""),
					Initialize:                attr2ok(t, "initialize-with"),
					Form:                      attrDefault(t, "form", "long"),
					DemoteNonDroppingParticle: attrDefault(t, "demote-non-dropping-particle", "never") != "never",
					SortOrder:                 attrDefault(t, "name-as-sort-order", "display"),
					Delimiter:                 attrDefault(t, "delimiter", ", "),
					And:                       attrDefault(t, "and", "text"),
				}
				if err := c.skip("name"); err != nil {
					return nil, err
				}
			case "et-al":
				n.EtAlMin = attrInt(t, "min", 0)
				n.EtAlUseFirst = attrInt(t, "use-first", 1)
				if err := c.skip("et-al"); err != nil {
					return nil, err
				}
			case "label":
				lbl := Label{
					Variable: "role",
					Form:     attrDefault(t, "form", "long"),
					Plural:   attrDefault(t, "plural", "contextual"),
				}
				n.Label = &lbl
				if err := c.skip("label"); err != nil {
					return nil, err
				}
			default:
				if err := c.skip(t.Name.Local); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "names" {
				return n, nil
			}
		}
	}
}

func attr2ok(se xml.StartElement, name string) bool {
	_, ok := attr(se, name)
	return ok
}

func (c *compiler) compileChoose() (Element, error) {
	var ch Choose
	for {
		tok, err := c.dec.Token()
		if err != nil {
			return nil, cerr.New(cerr.StyleInvalid, "unexpected end of document inside <choose>")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "if", "else-if":
				cond := Condition{
					Position:     attrDefault(t, "position", ""),
					Type:         splitNonEmpty(attrDefault(t, "type", "")),
					Variable:     splitNonEmpty(attrDefault(t, "variable", "")),
					Disambiguate: attrBool(t, "disambiguate"),
					MatchAll:     attrDefault(t, "match", "any") == "all",
				}
				children, err := c.children(t.Name.Local)
				if err != nil {
					return nil, err
				}
				ch.Branches = append(ch.Branches, ChooseBranch{Condition: cond, Children: children})
			case "else":
				children, err := c.children("else")
				if err != nil {
					return nil, err
				}
				ch.Branches = append(ch.Branches, ChooseBranch{IsElse: true, Children: children})
			default:
				if err := c.skip(t.Name.Local); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "choose" {
				return ch, nil
			}
		}
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
