// krb/reader.go
package krb

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log"
)

// ReadDocument parses a KRYN container from r into a Document. r must
// support Seek for random access into the offset-addressed sections.
// Any error aborts the load; the returned Document is nil in that case.
func ReadDocument(r io.ReadSeeker) (*Document, error) {
	doc := &Document{}

	if err := readHeader(r, &doc.Header); err != nil {
		return nil, err
	}
	if err := validateOffsets(&doc.Header); err != nil {
		return nil, err
	}

	strs, err := readStringTable(r)
	if err != nil {
		return nil, fmt.Errorf("krb read: string table: %w", err)
	}
	doc.Strings = strs

	vars, err := readVariables(r, doc.Strings)
	if err != nil {
		return nil, fmt.Errorf("krb read: variables section: %w", err)
	}
	doc.Variables = vars

	if doc.Header.StyleCount > 0 {
		if _, err := r.Seek(int64(doc.Header.StyleOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("krb read: seek to styles offset %d: %w", doc.Header.StyleOffset, err)
		}
		styles, err := readStyles(r, doc.Header.StyleCount, doc.Strings)
		if err != nil {
			return nil, fmt.Errorf("krb read: styles section: %w", err)
		}
		doc.Styles = styles
	}

	if doc.Header.ThemeCount > 0 {
		if _, err := r.Seek(int64(doc.Header.ThemeOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("krb read: seek to themes offset %d: %w", doc.Header.ThemeOffset, err)
		}
		themes, err := readThemes(r, doc.Header.ThemeCount)
		if err != nil {
			return nil, fmt.Errorf("krb read: themes section: %w", err)
		}
		doc.Themes = themes
	}

	if doc.Header.ElementCount > 0 {
		if _, err := r.Seek(int64(doc.Header.WidgetInstanceOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("krb read: seek to widget-instances offset %d: %w", doc.Header.WidgetInstanceOffset, err)
		}
		roots, total, err := readElementForest(r, doc.Strings)
		if err != nil {
			return nil, fmt.Errorf("krb read: elements section: %w", err)
		}
		if uint32(total) > doc.Header.ElementCount {
			return nil, fmt.Errorf("%w: elements section declared %d but parsed %d", ErrMalformedContainer, doc.Header.ElementCount, total)
		}
		doc.Roots = roots
	}

	if (doc.Header.Flags&FlagHasComponentDefs) != 0 && doc.Header.WidgetDefCount > 0 {
		if _, err := r.Seek(int64(doc.Header.WidgetDefOffset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("krb read: seek to widget-defs offset %d: %w", doc.Header.WidgetDefOffset, err)
		}
		comps, err := readComponents(r, doc.Header.WidgetDefCount, doc.Strings)
		if err != nil {
			return nil, fmt.Errorf("krb read: components section: %w", err)
		}
		doc.Components = comps
	}

	if _, err := r.Seek(int64(doc.Header.ScriptOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("krb read: seek to scripts offset %d: %w", doc.Header.ScriptOffset, err)
	}
	scripts, err := readScripts(r, doc.Strings)
	if err != nil {
		return nil, fmt.Errorf("krb read: scripts section: %w", err)
	}
	doc.Scripts = scripts

	// The resource section is reserved by the header but not yet consumed
	// by any runtime-core module; log and move on rather than parse it.
	if (doc.Header.Flags & FlagHasResources) != 0 {
		log.Printf("krb: FlagHasResources set but resource parsing is not implemented; resources offset %d ignored", doc.Header.ResourceOffset)
	}

	return doc, nil
}

func readHeader(r io.ReadSeeker, h *Header) error {
	buf := make([]byte, HeaderSize)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("krb read: seek to header: %w", err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: failed to read header: %v", ErrMalformedContainer, err)
	}

	copy(h.Magic[:], buf[0:4])
	if !bytes.Equal(h.Magic[:], MagicNumber[:]) {
		return fmt.Errorf("%w: bad magic %q", ErrMalformedContainer, h.Magic[:])
	}
	h.VerMaj = ReadU16BE(buf[4:6])
	h.VerMin = ReadU16BE(buf[6:8])
	h.VerPat = ReadU16BE(buf[8:10])
	h.Flags = ReadU16BE(buf[10:12])

	h.StyleCount = ReadU32BE(buf[12:16])
	h.ThemeCount = ReadU32BE(buf[16:20])
	h.WidgetDefCount = ReadU32BE(buf[20:24])
	h.ElementCount = ReadU32BE(buf[24:28])
	h.PropertyCount = ReadU32BE(buf[28:32])

	h.TotalSize = ReadU32BE(buf[32:36])
	h.DataChecksum = ReadU32BE(buf[36:40])
	h.HeaderChecksum = ReadU32BE(buf[40:44])

	h.Compression = buf[44]
	h.UncompressedSize = ReadU32BE(buf[45:49])

	h.StyleOffset = ReadU32BE(buf[49:53])
	h.ThemeOffset = ReadU32BE(buf[53:57])
	h.WidgetDefOffset = ReadU32BE(buf[57:61])
	h.WidgetInstanceOffset = ReadU32BE(buf[61:65])
	h.ScriptOffset = ReadU32BE(buf[65:69])
	h.ResourceOffset = ReadU32BE(buf[69:73])
	copy(h.Reserved[:], buf[73:92])

	if h.VerMaj != SpecVersionMajor {
		return fmt.Errorf("%w: version major %d unsupported by a %d.x reader", ErrMalformedContainer, h.VerMaj, SpecVersionMajor)
	}
	if h.VerMin != SpecVersionMinor {
		log.Printf("krb: version mismatch, file is %d.%d.%d, reader built for %d.%d.%d; continuing",
			h.VerMaj, h.VerMin, h.VerPat, SpecVersionMajor, SpecVersionMinor, SpecVersionPatch)
	}
	return nil
}

func validateOffsets(h *Header) error {
	checks := []struct {
		name   string
		count  uint32
		offset uint32
	}{
		{"styles", h.StyleCount, h.StyleOffset},
		{"themes", h.ThemeCount, h.ThemeOffset},
		{"widget-defs", h.WidgetDefCount, h.WidgetDefOffset},
		{"widget-instances", h.ElementCount, h.WidgetInstanceOffset},
	}
	for _, c := range checks {
		if c.count > 0 && c.offset < HeaderSize {
			return fmt.Errorf("%w: %s offset %d overlaps header", ErrMalformedContainer, c.name, c.offset)
		}
		if c.count > 0 && h.TotalSize > 0 && c.offset > h.TotalSize {
			return fmt.Errorf("%w: %s offset %d beyond declared file size %d", ErrMalformedContainer, c.name, c.offset, h.TotalSize)
		}
	}
	if h.ScriptOffset != 0 && h.ScriptOffset < HeaderSize {
		return fmt.Errorf("%w: scripts offset %d overlaps header", ErrMalformedContainer, h.ScriptOffset)
	}
	return nil
}

func readStringTable(r io.Reader) ([]string, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	// Index 0 is reserved for "none": allocate count+1 so Strings[0] == "".
	strs := make([]string, count+1)
	for i := uint32(1); i <= count; i++ {
		length, err := readU16(r)
		if err != nil {
			return nil, fmt.Errorf("string %d length: %w", i, err)
		}
		if length == 0 {
			continue
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: string %d data (len %d): %v", ErrMalformedContainer, i, length, err)
		}
		strs[i] = string(data)
	}
	return strs, nil
}

func stringAt(strs []string, idx uint32) string {
	if idx == 0 || int(idx) >= len(strs) {
		return ""
	}
	return strs[idx]
}

func checkStringIndex(strs []string, idx uint32) error {
	if idx != 0 && int(idx) >= len(strs) {
		return fmt.Errorf("%w: string index %d out of bounds (table has %d entries)", ErrMalformedContainer, idx, len(strs))
	}
	return nil
}

func readVariables(r io.Reader, strs []string) ([]VariableRecord, error) {
	magicBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return nil, fmt.Errorf("%w: magic: %v", ErrMalformedContainer, err)
	}
	if !bytes.Equal(magicBuf, MagicVars[:]) {
		return nil, fmt.Errorf("%w: expected VARS magic, got %q", ErrMalformedContainer, magicBuf)
	}
	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	recs := make([]VariableRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		nameRef, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := checkStringIndex(strs, nameRef); err != nil {
			return nil, err
		}
		tagBytes := make([]byte, 2)
		if _, err := io.ReadFull(r, tagBytes); err != nil {
			return nil, fmt.Errorf("%w: record %d type/tag: %v", ErrMalformedContainer, i, err)
		}
		typ := ValueTag(tagBytes[0])
		tag := ValueTag(tagBytes[1])
		if tag != typ {
			log.Printf("krb: variable %q declares type 0x%02X but value tag 0x%02X; trusting declared type", stringAt(strs, nameRef), typ, tag)
		}

		val, err := readTypedScalarAsString(r, typ, strs)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", stringAt(strs, nameRef), err)
		}
		recs = append(recs, VariableRecord{Name: stringAt(strs, nameRef), Type: typ, Tag: tag, Value: val})
	}
	return recs, nil
}

// readTypedScalarAsString reads a STRING/INTEGER/FLOAT/BOOLEAN payload
// (the only types a Variable or a component state var may declare) and
// renders it to its canonical UTF-8 form.
func readTypedScalarAsString(r io.Reader, typ ValueTag, strs []string) (string, error) {
	switch typ {
	case TagString:
		ref, err := readU32(r)
		if err != nil {
			return "", err
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return "", err
		}
		return stringAt(strs, ref), nil
	case TagInteger:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
		}
		return fmt.Sprintf("%d", ReadI64BE(b)), nil
	case TagFloat:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
		}
		return fmt.Sprintf("%g", ReadF64BE(b)), nil
	case TagBoolean:
		b := make([]byte, 1)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
		}
		if b[0] != 0 {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("%w: unsupported scalar type 0x%02X", ErrMalformedContainer, typ)
	}
}

func readProperty(r io.Reader, strs []string) (PropertyRecord, error) {
	head := make([]byte, 3) // name-hex(2) + tag(1)
	if _, err := io.ReadFull(r, head); err != nil {
		return PropertyRecord{}, fmt.Errorf("%w: property header: %v", ErrMalformedContainer, err)
	}
	p := PropertyRecord{NameHex: ReadU16BE(head[0:2]), Tag: ValueTag(head[2])}

	switch p.Tag {
	case TagString:
		ref, err := readU32(r)
		if err != nil {
			return p, err
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return p, err
		}
		p.Str = stringAt(strs, ref)
	case TagInteger:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return p, fmt.Errorf("%w: integer payload: %v", ErrMalformedContainer, err)
		}
		p.Int = ReadI64BE(b)
	case TagFloat:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return p, fmt.Errorf("%w: float payload: %v", ErrMalformedContainer, err)
		}
		p.Float = ReadF64BE(b)
	case TagBoolean:
		b := make([]byte, 1)
		if _, err := io.ReadFull(r, b); err != nil {
			return p, fmt.Errorf("%w: boolean payload: %v", ErrMalformedContainer, err)
		}
		p.Bool = b[0] != 0
	case TagColor:
		b := make([]byte, 4)
		if _, err := io.ReadFull(r, b); err != nil {
			return p, fmt.Errorf("%w: color payload: %v", ErrMalformedContainer, err)
		}
		copy(p.Color[:], b)
	case TagFunction:
		ref, err := readU32(r)
		if err != nil {
			return p, err
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return p, err
		}
		p.Function = stringAt(strs, ref)
	case TagReference:
		ref, err := readU32(r)
		if err != nil {
			return p, err
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return p, err
		}
		p.Reference = stringAt(strs, ref)
	case TagTemplate:
		segCount, err := readU16(r)
		if err != nil {
			return p, err
		}
		p.Segments = make([]TemplateSegment, segCount)
		for i := range p.Segments {
			tagByte := make([]byte, 1)
			if _, err := io.ReadFull(r, tagByte); err != nil {
				return p, fmt.Errorf("%w: template segment %d tag: %v", ErrMalformedContainer, i, err)
			}
			ref, err := readU32(r)
			if err != nil {
				return p, err
			}
			if err := checkStringIndex(strs, ref); err != nil {
				return p, err
			}
			p.Segments[i] = TemplateSegment{Tag: TemplateSegmentTag(tagByte[0]), Text: stringAt(strs, ref)}
		}
	case TagArray:
		itemCount, err := readU16(r)
		if err != nil {
			return p, err
		}
		p.Array = make([]string, itemCount)
		for i := range p.Array {
			ref, err := readU32(r)
			if err != nil {
				return p, err
			}
			if err := checkStringIndex(strs, ref); err != nil {
				return p, err
			}
			p.Array[i] = stringAt(strs, ref)
		}
	case TagASTExpr:
		ref, err := readU32(r)
		if err != nil {
			return p, err
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return p, err
		}
		p.ASTSource = stringAt(strs, ref)
	default:
		return p, fmt.Errorf("%w: unknown property value tag 0x%02X", ErrMalformedContainer, p.Tag)
	}
	return p, nil
}

func readU16(r io.Reader) (uint16, error) {
	b := make([]byte, 2)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	return ReadU16BE(b), nil
}

func readU32(r io.Reader) (uint32, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	return ReadU32BE(b), nil
}

// readElementForest reads exactly one root tree: the wire format doesn't
// separately declare a root count, and the compiler always emits a
// single implicit root wrapper, with every further root nested under it
// as a child. Children are encoded inline, recursively, so no
// byte-offset indirection (unlike the teacher's ChildRef scheme) is
// needed to walk the tree.
func readElementForest(r io.Reader, strs []string) ([]*ElementRecord, int, error) {
	root, n, err := readElement(r, strs)
	if err != nil {
		return nil, 0, err
	}
	return []*ElementRecord{root}, n, nil
}

func readElement(r io.Reader, strs []string) (*ElementRecord, int, error) {
	head := make([]byte, ElementHeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, 0, fmt.Errorf("%w: element header: %v", ErrMalformedContainer, err)
	}
	el := &ElementRecord{
		InstanceID: ReadU32BE(head[0:4]),
		TypeHex:    ReadU16BE(head[4:6]),
		ParentID:   ReadU32BE(head[6:10]),
		StyleRef:   ReadU32BE(head[10:14]),
	}
	propCount := ReadU16BE(head[14:16])
	childCount := ReadU16BE(head[16:18])
	handlerCount := ReadU16BE(head[18:20])
	// head[20:24] is the 32-bit flags field, unassigned by the runtime
	// core today; read and discarded rather than carried on the struct.

	count := 1
	el.Properties = make([]PropertyRecord, propCount)
	for i := range el.Properties {
		p, err := readProperty(r, strs)
		if err != nil {
			return nil, 0, fmt.Errorf("element %d, property %d: %w", el.InstanceID, i, err)
		}
		el.Properties[i] = p
	}

	el.Handlers = make([]HandlerRecord, handlerCount)
	for i := range el.Handlers {
		b := make([]byte, 1)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, 0, fmt.Errorf("%w: element %d, handler %d event-type: %v", ErrMalformedContainer, el.InstanceID, i, err)
		}
		ref, err := readU32(r)
		if err != nil {
			return nil, 0, fmt.Errorf("element %d, handler %d: %w", el.InstanceID, i, err)
		}
		if err := checkStringIndex(strs, ref); err != nil {
			return nil, 0, err
		}
		el.Handlers[i] = HandlerRecord{EventType: b[0], Function: stringAt(strs, ref)}
	}

	el.Children = make([]*ElementRecord, childCount)
	for i := range el.Children {
		child, n, err := readElement(r, strs)
		if err != nil {
			return nil, 0, err
		}
		el.Children[i] = child
		count += n
	}
	return el, count, nil
}

func readStyles(r io.Reader, count uint32, strs []string) ([]StyleRecord, error) {
	styles := make([]StyleRecord, count)
	for i := range styles {
		idRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		nameRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		propCount, err := readU16(r)
		if err != nil {
			return nil, err
		}
		props := make([]PropertyRecord, propCount)
		for j := range props {
			p, err := readProperty(r, strs)
			if err != nil {
				return nil, fmt.Errorf("style %d, property %d: %w", i, j, err)
			}
			props[j] = p
		}
		styles[i] = StyleRecord{ID: idRef, Name: stringAt(strs, nameRef), Properties: props}
	}
	return styles, nil
}

// readThemes carries each theme record as an opaque blob: no module in
// the runtime core consumes theme data, so it is round-tripped rather
// than deeply parsed.
func readThemes(r io.Reader, count uint32) ([][]byte, error) {
	themes := make([][]byte, count)
	for i := range themes {
		size, err := readU32(r)
		if err != nil {
			return nil, err
		}
		blob := make([]byte, size)
		if _, err := io.ReadFull(r, blob); err != nil {
			return nil, fmt.Errorf("%w: theme %d blob (size %d): %v", ErrMalformedContainer, i, size, err)
		}
		themes[i] = blob
	}
	return themes, nil
}

func readScripts(r io.Reader, strs []string) ([]ScriptRecord, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	scripts := make([]ScriptRecord, count)
	magicBuf := make([]byte, 4)
	for i := range scripts {
		if _, err := io.ReadFull(r, magicBuf); err != nil {
			return nil, fmt.Errorf("%w: script %d magic: %v", ErrMalformedContainer, i, err)
		}
		if !bytes.Equal(magicBuf, MagicFunc[:]) {
			return nil, fmt.Errorf("%w: script %d: expected FUNC magic, got %q", ErrMalformedContainer, i, magicBuf)
		}
		langRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		nameRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		paramCount, err := readU16(r)
		if err != nil {
			return nil, err
		}
		params := make([]string, paramCount)
		for j := range params {
			ref, err := readU32(r)
			if err != nil {
				return nil, err
			}
			if err := checkStringIndex(strs, ref); err != nil {
				return nil, err
			}
			params[j] = stringAt(strs, ref)
		}
		codeRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		if err := checkStringIndex(strs, codeRef); err != nil {
			return nil, err
		}
		lang := stringAt(strs, langRef)
		codeHex := stringAt(strs, codeRef)
		var code []byte
		if lang == "lua" {
			code, err = hex.DecodeString(codeHex)
			if err != nil {
				return nil, fmt.Errorf("%w: script %d (%s): code-ref is not valid hex: %v", ErrMalformedContainer, i, stringAt(strs, nameRef), err)
			}
		} else {
			log.Printf("krb: script %q declares unsupported language %q; code-ref carried as raw bytes", stringAt(strs, nameRef), lang)
			code = []byte(codeHex)
		}
		scripts[i] = ScriptRecord{Language: lang, Name: stringAt(strs, nameRef), Params: params, Code: code}
	}
	return scripts, nil
}

func readComponents(r io.Reader, count uint32, strs []string) ([]ComponentRecord, error) {
	comps := make([]ComponentRecord, count)
	magicBuf := make([]byte, 4)
	for i := range comps {
		if _, err := io.ReadFull(r, magicBuf); err != nil {
			return nil, fmt.Errorf("%w: component %d magic: %v", ErrMalformedContainer, i, err)
		}
		if !bytes.Equal(magicBuf, MagicComp[:]) {
			return nil, fmt.Errorf("%w: component %d: expected COMP magic, got %q", ErrMalformedContainer, i, magicBuf)
		}
		nameRef, err := readU32(r)
		if err != nil {
			return nil, err
		}
		paramCount, err := readU16(r)
		if err != nil {
			return nil, err
		}
		params := make([]ComponentParam, paramCount)
		for j := range params {
			nRef, err := readU32(r)
			if err != nil {
				return nil, err
			}
			dRef, err := readU32(r)
			if err != nil {
				return nil, err
			}
			params[j] = ComponentParam{Name: stringAt(strs, nRef), Default: stringAt(strs, dRef)}
		}
		stateCount, err := readU16(r)
		if err != nil {
			return nil, err
		}
		states := make([]ComponentStateVar, stateCount)
		for j := range states {
			nRef, err := readU32(r)
			if err != nil {
				return nil, err
			}
			typeByte := make([]byte, 1)
			if _, err := io.ReadFull(r, typeByte); err != nil {
				return nil, fmt.Errorf("%w: component %d, state %d type: %v", ErrMalformedContainer, i, j, err)
			}
			typ := ValueTag(typeByte[0])
			val, err := readTypedScalarAsString(r, typ, strs)
			if err != nil {
				return nil, fmt.Errorf("component %d, state %d: %w", i, j, err)
			}
			states[j] = ComponentStateVar{Name: stringAt(strs, nRef), Type: typ, Default: val}
		}

		hasTemplate := make([]byte, 1)
		if _, err := io.ReadFull(r, hasTemplate); err != nil {
			return nil, fmt.Errorf("%w: component %d template flag: %v", ErrMalformedContainer, i, err)
		}
		var tmpl *ElementRecord
		if hasTemplate[0] != 0 {
			t, _, err := readElement(r, strs)
			if err != nil {
				return nil, fmt.Errorf("component %d (%s) template: %w", i, stringAt(strs, nameRef), err)
			}
			tmpl = t
		}
		comps[i] = ComponentRecord{Name: stringAt(strs, nameRef), Params: params, StateVars: states, Template: tmpl}
	}
	return comps, nil
}
