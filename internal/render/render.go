// Package render turns a payload into display text: pretty JSON, indented
// plist, YAML or the raw bytes.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
	"howett.net/plist"
)

const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPlist = "plist"
	FormatRaw   = "raw"
)

var ErrNotStructured = errors.New("payload is neither JSON nor a plist")

type Kind int

const (
	KindText Kind = iota
	KindJSON
	KindPlist
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindPlist:
		return "plist"
	default:
		return "text"
	}
}

type Options struct {
	Format string
	// Preview truncates unstructured text to this many runes; 0 means no limit.
	Preview int
}

// Detect reports how data would be interpreted in auto mode.
func Detect(data []byte) Kind {
	if isPlist(data) {
		if _, _, err := decodePlist(data); err == nil {
			return KindPlist
		}
	}
	if json.Valid(data) {
		return KindJSON
	}
	return KindText
}

// Write renders data to w according to opts.
func Write(w io.Writer, data []byte, opts Options) error {
	out, err := Render(data, opts)
	if err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	_, err = w.Write(out)
	return err
}

func Render(data []byte, opts Options) ([]byte, error) {
	switch opts.Format {
	case "", FormatAuto:
		switch Detect(data) {
		case KindJSON:
			return indentJSON(data)
		case KindPlist:
			v, _, _ := decodePlist(data)
			return plist.MarshalIndent(v, plist.XMLFormat, "  ")
		default:
			return preview(data, opts.Preview), nil
		}
	case FormatRaw:
		return preview(data, opts.Preview), nil
	case FormatJSON:
		if json.Valid(data) {
			return indentJSON(data)
		}
		v, err := structured(data)
		if err != nil {
			return nil, err
		}
		return marshalJSON(v)
	case FormatYAML:
		v, err := structured(data)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(v)
	case FormatPlist:
		v, err := structured(data)
		if err != nil {
			return nil, err
		}
		return plist.MarshalIndent(v, plist.XMLFormat, "  ")
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// structured decodes JSON or plist into plain Go values.
func structured(data []byte) (interface{}, error) {
	if json.Valid(data) {
		var v interface{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
		return v, nil
	}
	if isPlist(data) {
		v, _, err := decodePlist(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode plist: %w", err)
		}
		return v, nil
	}
	return nil, ErrNotStructured
}

// indentJSON re-emits data with two-space indentation, keeping key order and
// writing strings unescaped except where JSON requires it.
func indentJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var buf bytes.Buffer
	if err := writeJSONValue(&buf, dec, 0); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, dec *json.Decoder, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		isObject := v == '{'
		buf.WriteByte(byte(v))
		n := 0
		for dec.More() {
			if n > 0 {
				buf.WriteByte(',')
			}
			writeIndent(buf, depth+1)
			if isObject {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				if err := writeJSONString(buf, key.(string)); err != nil {
					return err
				}
				buf.WriteString(": ")
			}
			if err := writeJSONValue(buf, dec, depth+1); err != nil {
				return err
			}
			n++
		}
		end, err := dec.Token()
		if err != nil {
			return err
		}
		if n > 0 {
			writeIndent(buf, depth)
		}
		buf.WriteByte(byte(end.(json.Delim)))
	case string:
		return writeJSONString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case nil:
		buf.WriteString("null")
	}
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isPlist(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte("bplist00")) ||
		bytes.HasPrefix(trimmed, []byte("<?xml")) && bytes.Contains(trimmed, []byte("<plist")) ||
		bytes.HasPrefix(trimmed, []byte("<plist"))
}

func decodePlist(data []byte) (interface{}, int, error) {
	var v interface{}
	format, err := plist.Unmarshal(data, &v)
	if err != nil {
		return nil, 0, err
	}
	if format != plist.XMLFormat && format != plist.BinaryFormat {
		return nil, 0, fmt.Errorf("unsupported plist format %s", plist.FormatNames[format])
	}
	return v, format, nil
}

func preview(data []byte, limit int) []byte {
	if limit <= 0 || utf8.RuneCount(data) <= limit {
		return data
	}
	cut := 0
	for i := 0; i < limit; i++ {
		_, size := utf8.DecodeRune(data[cut:])
		cut += size
	}
	out := make([]byte, 0, cut+3)
	out = append(out, data[:cut]...)
	return append(out, "..."...)
}
