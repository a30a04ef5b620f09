package bybit

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

type paramKind int

const (
	kindString paramKind = iota
	kindBool
	kindInt
)

type param struct {
	key   string
	value string
	kind  paramKind
}

// Params는 삽입 순서를 보존하는 요청 파라미터입니다.
// 서명 문자열과 실제 전송 문자열은 항상 같은 순서로 만들어집니다.
type Params struct {
	list []param
}

// NewParams는 빈 파라미터 목록을 생성합니다
func NewParams() *Params {
	return &Params{}
}

// Add는 문자열 파라미터를 추가합니다. 같은 키가 있으면 위치를 유지한 채 값을 바꿉니다.
func (p *Params) Add(key, value string) *Params {
	return p.set(key, value, kindString)
}

// AddBool은 JSON 본문에 boolean으로 직렬화되는 파라미터를 추가합니다
func (p *Params) AddBool(key string, value bool) *Params {
	return p.set(key, strconv.FormatBool(value), kindBool)
}

// AddInt는 JSON 본문에 숫자로 직렬화되는 파라미터를 추가합니다
func (p *Params) AddInt(key string, value int) *Params {
	return p.set(key, strconv.Itoa(value), kindInt)
}

func (p *Params) set(key, value string, kind paramKind) *Params {
	for i := range p.list {
		if p.list[i].key == key {
			p.list[i].value = value
			p.list[i].kind = kind
			return p
		}
	}
	p.list = append(p.list, param{key: key, value: value, kind: kind})
	return p
}

// Get은 키에 해당하는 값을 반환합니다
func (p *Params) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, kv := range p.list {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

// Len은 파라미터 개수를 반환합니다
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// Keys는 삽입 순서대로 키 목록을 반환합니다
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.list))
	for i, kv := range p.list {
		keys[i] = kv.key
	}
	return keys
}

// Encode는 삽입 순서 그대로 key=value&... 쿼리 문자열을 만듭니다 (정렬하지 않음).
// 파라미터가 없으면 빈 문자열입니다.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, kv := range p.list {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.value))
	}
	return sb.String()
}

// MarshalJSON은 삽입 순서 그대로 JSON 객체를 만듭니다. 파라미터가 없으면 {} 입니다.
func (p *Params) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	if p != nil {
		for i, kv := range p.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, err := marshalString(kv.key)
			if err != nil {
				return nil, err
			}
			sb.WriteString(key)
			sb.WriteByte(':')

			switch kv.kind {
			case kindBool, kindInt:
				sb.WriteString(kv.value)
			default:
				val, err := marshalString(kv.value)
				if err != nil {
					return nil, err
				}
				sb.WriteString(val)
			}
		}
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// marshalString은 HTML 이스케이프 없이 JSON 문자열을 만듭니다 (JSON.stringify와 동일)
func marshalString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// body는 POST 본문 문자열을 반환합니다. 문자열 값의 JSON 인코딩은 실패하지 않습니다.
func (p *Params) body() string {
	b, err := p.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}
