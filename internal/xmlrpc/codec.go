// Package xmlrpc encodes and decodes XML-RPC method calls and responses.
//
// Decoded values map to Go as follows: int/i4 -> int, i8 -> int64,
// boolean -> bool, double -> float64, string (or untyped) -> string,
// dateTime.iso8601 -> time.Time, base64 -> []byte, array -> []any,
// struct -> map[string]any, nil -> nil.
package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateTimeLayout = "20060102T15:04:05"

// Fault codes returned by the server.
const (
	FaultUnknownKeyword   = 1
	FaultUnknownProcedure = 2
	FaultMalformedRequest = 3
)

// Fault is an XML-RPC fault response.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

// Call is a decoded method call.
type Call struct {
	Method string
	Params []any
}

type xmlValue struct {
	String   *string    `xml:"string"`
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	I8       *string    `xml:"i8"`
	Boolean  *string    `xml:"boolean"`
	Double   *string    `xml:"double"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Array    *xmlArray  `xml:"array"`
	Struct   *xmlStruct `xml:"struct"`
	Nil      *struct{}  `xml:"nil"`
	Text     string     `xml:",chardata"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlParam struct {
	Value xmlValue `xml:"value"`
}

type xmlMethodCall struct {
	XMLName xml.Name   `xml:"methodCall"`
	Method  string     `xml:"methodName"`
	Params  []xmlParam `xml:"params>param"`
}

type xmlFault struct {
	Value xmlValue `xml:"value"`
}

type xmlMethodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []xmlParam `xml:"params>param"`
	Fault   *xmlFault  `xml:"fault"`
}

// DecodeCall reads a methodCall document.
func DecodeCall(r io.Reader) (*Call, error) {
	var mc xmlMethodCall
	if err := xml.NewDecoder(r).Decode(&mc); err != nil {
		return nil, fmt.Errorf("decoding method call: %w", err)
	}
	method := strings.TrimSpace(mc.Method)
	if method == "" {
		return nil, fmt.Errorf("decoding method call: missing methodName")
	}
	params := make([]any, len(mc.Params))
	for i, p := range mc.Params {
		v, err := p.Value.decode()
		if err != nil {
			return nil, fmt.Errorf("decoding param %d: %w", i, err)
		}
		params[i] = v
	}
	return &Call{Method: method, Params: params}, nil
}

// DecodeResponse reads a methodResponse document. A fault is returned as a
// *Fault error.
func DecodeResponse(r io.Reader) (any, error) {
	var mr xmlMethodResponse
	if err := xml.NewDecoder(r).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decoding method response: %w", err)
	}
	if mr.Fault != nil {
		v, err := mr.Fault.Value.decode()
		if err != nil {
			return nil, fmt.Errorf("decoding fault: %w", err)
		}
		m, _ := v.(map[string]any)
		f := &Fault{}
		switch code := m["faultCode"].(type) {
		case int:
			f.Code = code
		case int64:
			f.Code = int(code)
		}
		f.Message, _ = m["faultString"].(string)
		return nil, f
	}
	if len(mr.Params) == 0 {
		return nil, nil
	}
	return mr.Params[0].Value.decode()
}

func (v *xmlValue) decode() (any, error) {
	switch {
	case v.String != nil:
		return *v.String, nil
	case v.Int != nil:
		return parseInt(*v.Int)
	case v.I4 != nil:
		return parseInt(*v.I4)
	case v.I8 != nil:
		return strconv.ParseInt(strings.TrimSpace(*v.I8), 10, 64)
	case v.Boolean != nil:
		switch strings.TrimSpace(*v.Boolean) {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid boolean %q", *v.Boolean)
		}
	case v.Double != nil:
		return strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
	case v.DateTime != nil:
		return time.Parse(dateTimeLayout, strings.TrimSpace(*v.DateTime))
	case v.Base64 != nil:
		return base64.StdEncoding.DecodeString(strings.TrimSpace(*v.Base64))
	case v.Array != nil:
		out := make([]any, len(v.Array.Values))
		for i := range v.Array.Values {
			e, err := v.Array.Values[i].decode()
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case v.Struct != nil:
		out := make(map[string]any, len(v.Struct.Members))
		for i := range v.Struct.Members {
			m := &v.Struct.Members[i]
			e, err := m.Value.decode()
			if err != nil {
				return nil, err
			}
			out[m.Name] = e
		}
		return out, nil
	case v.Nil != nil:
		return nil, nil
	default:
		return v.Text, nil
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// EncodeCall writes a methodCall document.
func EncodeCall(w io.Writer, method string, params ...any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	xml.EscapeText(&buf, []byte(method))
	buf.WriteString("</methodName><params>")
	for _, p := range params {
		buf.WriteString("<param>")
		if err := encodeValue(&buf, p); err != nil {
			return err
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeResponse writes a methodResponse carrying one value.
func EncodeResponse(w io.Writer, result any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param>")
	if err := encodeValue(&buf, result); err != nil {
		return err
	}
	buf.WriteString("</param></params></methodResponse>")
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeFault writes a methodResponse fault.
func EncodeFault(w io.Writer, code int, message string) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault>")
	if err := encodeValue(&buf, map[string]any{"faultCode": code, "faultString": message}); err != nil {
		return err
	}
	buf.WriteString("</fault></methodResponse>")
	_, err := w.Write(buf.Bytes())
	return err
}

func encodeValue(buf *bytes.Buffer, v any) error {
	buf.WriteString("<value>")
	defer buf.WriteString("</value>")

	switch x := v.(type) {
	case nil:
		buf.WriteString("<string></string>")
		return nil
	case string:
		buf.WriteString("<string>")
		xml.EscapeText(buf, []byte(x))
		buf.WriteString("</string>")
		return nil
	case bool:
		if x {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
		return nil
	case float32:
		writeDouble(buf, float64(x))
		return nil
	case float64:
		writeDouble(buf, x)
		return nil
	case time.Time:
		buf.WriteString("<dateTime.iso8601>" + x.Format(dateTimeLayout) + "</dateTime.iso8601>")
		return nil
	case []byte:
		buf.WriteString("<base64>" + base64.StdEncoding.EncodeToString(x) + "</base64>")
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeInt(buf, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			buf.WriteString("<string>" + strconv.FormatUint(u, 10) + "</string>")
		} else {
			writeInt(buf, int64(u))
		}
	case reflect.String:
		buf.WriteString("<string>")
		xml.EscapeText(buf, []byte(rv.String()))
		buf.WriteString("</string>")
	case reflect.Slice, reflect.Array:
		buf.WriteString("<array><data>")
		for i := 0; i < rv.Len(); i++ {
			if err := encodeValue(buf, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("xmlrpc: struct keys must be strings, got %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		buf.WriteString("<struct>")
		for _, k := range keys {
			buf.WriteString("<member><name>")
			xml.EscapeText(buf, []byte(k))
			buf.WriteString("</name>")
			if err := encodeValue(buf, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()); err != nil {
				return err
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")
	default:
		return fmt.Errorf("xmlrpc: unsupported value type %T", v)
	}
	return nil
}

func writeInt(buf *bytes.Buffer, n int64) {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		buf.WriteString("<int>" + strconv.FormatInt(n, 10) + "</int>")
		return
	}
	buf.WriteString("<i8>" + strconv.FormatInt(n, 10) + "</i8>")
}

func writeDouble(buf *bytes.Buffer, f float64) {
	buf.WriteString("<double>" + strconv.FormatFloat(f, 'f', -1, 64) + "</double>")
}
