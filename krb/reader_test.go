package krb

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// builder assembles a minimal valid KRYN byte stream by hand, the same
// level the format's own reader operates at. Tests build just enough
// of a container to exercise one section at a time.
type builder struct {
	strs []string // index 0 reserved, matches the wire's 1-indexed table
}

func newBuilder() *builder { return &builder{strs: []string{""}} }

func (b *builder) str(s string) uint32 {
	b.strs = append(b.strs, s)
	return uint32(len(b.strs) - 1)
}

func (b *builder) stringTable() []byte {
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(b.strs)-1))
	for _, s := range b.strs[1:] {
		writeU16(&buf, uint16(len(s)))
		buf.WriteString(s)
	}
	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) { binary.Write(buf, binary.BigEndian, v) }
func writeU32(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.BigEndian, v) }

func emptyVariables() []byte {
	var buf bytes.Buffer
	buf.Write(MagicVars[:])
	writeU32(&buf, 0)
	return buf.Bytes()
}

func emptyScripts() []byte {
	var buf bytes.Buffer
	writeU32(&buf, 0)
	return buf.Bytes()
}

// buildMinimalDoc assembles a container with one App root element (no
// children) and nothing else, returning the full byte stream.
func buildMinimalDoc(t *testing.T) []byte {
	t.Helper()
	b := newBuilder()

	var elementBuf bytes.Buffer
	writeU32(&elementBuf, 1) // instance id
	writeU16(&elementBuf, 0x0001) // App
	writeU32(&elementBuf, 0) // parent id
	writeU32(&elementBuf, 0) // style ref
	writeU16(&elementBuf, 0) // prop count
	writeU16(&elementBuf, 0) // child count
	writeU16(&elementBuf, 0) // handler count
	writeU32(&elementBuf, 0) // flags

	strTable := b.stringTable()
	vars := emptyVariables()
	scripts := emptyScripts()

	var hdr bytes.Buffer
	hdr.Write(MagicNumber[:])
	writeU16(&hdr, SpecVersionMajor)
	writeU16(&hdr, SpecVersionMinor)
	writeU16(&hdr, SpecVersionPatch)
	writeU16(&hdr, 0) // flags
	writeU32(&hdr, 0) // styles
	writeU32(&hdr, 0) // themes
	writeU32(&hdr, 0) // widgetDefs
	writeU32(&hdr, 1) // elements
	writeU32(&hdr, 0) // properties
	writeU32(&hdr, 0) // total size (unchecked when 0)
	writeU32(&hdr, 0) // data checksum
	writeU32(&hdr, 0) // header checksum
	hdr.WriteByte(0)  // compression
	writeU32(&hdr, 0) // uncompressed size

	elementsOffset := uint32(HeaderSize + len(strTable) + len(vars))
	scriptsOffset := elementsOffset + uint32(elementBuf.Len())

	writeU32(&hdr, 0)              // style offset
	writeU32(&hdr, 0)              // theme offset
	writeU32(&hdr, 0)              // widget-def offset
	writeU32(&hdr, elementsOffset) // widget-instance offset
	writeU32(&hdr, scriptsOffset)  // script offset
	writeU32(&hdr, 0)              // resource offset
	hdr.Write(make([]byte, ReservedSize))

	require.Equal(t, HeaderSize, hdr.Len())

	var out bytes.Buffer
	out.Write(hdr.Bytes())
	out.Write(strTable)
	out.Write(vars)
	out.Write(elementBuf.Bytes())
	out.Write(scripts)
	return out.Bytes()
}

func TestReadDocumentMinimal(t *testing.T) {
	data := buildMinimalDoc(t)
	doc, err := ReadDocument(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, doc.Roots, 1)
	require.Equal(t, uint16(0x0001), doc.Roots[0].TypeHex)
	require.Equal(t, uint32(1), doc.Header.ElementCount)
}

func TestReadDocumentRejectsBadMagic(t *testing.T) {
	data := buildMinimalDoc(t)
	data[0] = 'X'
	_, err := ReadDocument(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestReadDocumentRejectsUnsupportedMajorVersion(t *testing.T) {
	data := buildMinimalDoc(t)
	binary.BigEndian.PutUint16(data[4:6], SpecVersionMajor+1)
	_, err := ReadDocument(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestReadDocumentRejectsTruncatedHeader(t *testing.T) {
	data := buildMinimalDoc(t)
	_, err := ReadDocument(bytes.NewReader(data[:10]))
	require.Error(t, err)
}
