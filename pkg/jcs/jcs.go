/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jcs implements RFC 8785 JSON Canonicalization (deterministic object-key order, no
// insignificant whitespace, canonical number forms) for the score-credential hashing and
// signing the score computer's archive emission depends on. It is a narrow, hand-rolled
// implementation rather than a general JSON-LD normalization library, matching the scope the
// original scoring core gave its own serde_jcs dependency.
package jcs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Canonicalize rewrites the given JSON document into its RFC 8785 canonical form.
func Canonicalize(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}

	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var buf bytes.Buffer

	if err := encode(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalCanonical marshals v with encoding/json, then canonicalizes the result.
func MarshalCanonical(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	return Canonicalize(data)
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")

		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}

		return nil
	case json.Number:
		return encodeNumber(buf, val)
	case string:
		return encodeString(buf, val)
	case []interface{}:
		return encodeArray(buf, val)
	case map[string]interface{}:
		return encodeObject(buf, val)
	default:
		return fmt.Errorf("jcs: unsupported type %T", v)
	}
}

func encodeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')

	for i, e := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encode(buf, e); err != nil {
			return err
		}
	}

	buf.WriteByte(']')

	return nil
}

// encodeObject writes obj's members sorted by code-unit order of their keys, as RFC 8785 §3.2.3
// requires. Plain Go string comparison matches UTF-16 code-unit order for every key this
// pipeline produces (credential field names and hex/DID strings), all within the Basic
// Multilingual Plane.
func encodeObject(buf *bytes.Buffer, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeString(buf, k); err != nil {
			return err
		}

		buf.WriteByte(':')

		if err := encode(buf, obj[k]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer

	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}

	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))

	return nil
}

// encodeNumber prints n in its canonical decimal form: bare integer digits when n has no
// fractional part, otherwise the shortest round-tripping decimal representation.
func encodeNumber(buf *bytes.Buffer, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		buf.WriteString(strconv.FormatInt(i, 10))

		return nil
	}

	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("parse number %q: %w", n, err)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("number %q is not representable in JSON", n)
	}

	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))

	return nil
}
