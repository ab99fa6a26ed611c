package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

const samplePlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0"><dict><key>items</key><array><dict><key>metadata</key><dict><key>bundle-identifier</key><string>com.appbox.StandarReader</string><key>title</key><string>StandarReader</string></dict></dict></array></dict></plist>`

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Kind
	}{
		{name: "JSON object", data: `{"a":1}`, want: KindJSON},
		{name: "JSON array", data: `[1,2]`, want: KindJSON},
		{name: "XML plist", data: samplePlist, want: KindPlist},
		{name: "Text", data: "hello world", want: KindText},
		{name: "Broken XML", data: "<?xml version=\"1.0\"?><plist><dict>", want: KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect([]byte(tt.data)))
		})
	}
}

func TestRender_AutoJSON(t *testing.T) {
	out, err := Render([]byte(`{"name":"读者","b":[1,2],"a":"<x>"}`), Options{})
	require.NoError(t, err)

	want := "{\n  \"name\": \"读者\",\n  \"b\": [\n    1,\n    2\n  ],\n  \"a\": \"<x>\"\n}"
	assert.Equal(t, want, string(out), "key order and non-ASCII text must be preserved")
}

func TestRender_AutoJSONUnescapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Unicode escape", in: `{"name":"\u4e2d\u6587"}`, want: "{\n  \"name\": \"中文\"\n}"},
		{name: "Escaped slash", in: `{"url":"a\/b"}`, want: "{\n  \"url\": \"a/b\"\n}"},
		{name: "Required escapes kept", in: `["q\"t","tab\t"]`, want: "[\n  \"q\\\"t\",\n  \"tab\\t\"\n]"},
		{name: "Empty containers", in: `{"a":{},"b":[]}`, want: "{\n  \"a\": {},\n  \"b\": []\n}"},
		{name: "Numbers kept verbatim", in: `{"n":1.50,"big":12345678901234567890,"ok":true,"none":null}`, want: "{\n  \"n\": 1.50,\n  \"big\": 12345678901234567890,\n  \"ok\": true,\n  \"none\": null\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render([]byte(tt.in), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestRender_AutoPlist(t *testing.T) {
	out, err := Render([]byte(samplePlist), Options{})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "<plist")
	assert.Contains(t, s, "  <dict>")
	assert.Contains(t, s, "com.appbox.StandarReader")
}

func TestRender_Formats(t *testing.T) {
	jsonBody := []byte(`{"name":"StandarReader","version":"2.56.1"}`)

	t.Run("YAML from JSON", func(t *testing.T) {
		out, err := Render(jsonBody, Options{Format: FormatYAML})
		require.NoError(t, err)
		assert.Contains(t, string(out), "name: StandarReader")
	})

	t.Run("JSON from plist", func(t *testing.T) {
		out, err := Render([]byte(samplePlist), Options{Format: FormatJSON})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"bundle-identifier": "com.appbox.StandarReader"`)
	})

	t.Run("Plist from JSON", func(t *testing.T) {
		out, err := Render(jsonBody, Options{Format: FormatPlist})
		require.NoError(t, err)

		var v map[string]interface{}
		_, err = plist.Unmarshal(out, &v)
		require.NoError(t, err)
		assert.Equal(t, "2.56.1", v["version"])
	})

	t.Run("Structured format on text", func(t *testing.T) {
		_, err := Render([]byte("plain"), Options{Format: FormatYAML})
		assert.ErrorIs(t, err, ErrNotStructured)
	})

	t.Run("Raw keeps bytes", func(t *testing.T) {
		out, err := Render(jsonBody, Options{Format: FormatRaw})
		require.NoError(t, err)
		assert.Equal(t, jsonBody, out)
	})

	t.Run("Unknown format", func(t *testing.T) {
		_, err := Render(jsonBody, Options{Format: "xml"})
		assert.Error(t, err)
	})
}

func TestRender_Preview(t *testing.T) {
	long := strings.Repeat("数", 600)

	out, err := Render([]byte(long), Options{Preview: 500})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("数", 500)+"...", string(out))

	out, err = Render([]byte("short"), Options{Preview: 500})
	require.NoError(t, err)
	assert.Equal(t, "short", string(out))
}

func TestWrite_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte("text"), Options{Format: FormatRaw}))
	assert.Equal(t, "text\n", buf.String())
}
