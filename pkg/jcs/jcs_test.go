/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	out, err := Canonicalize([]byte(`{"b":1,"a":2}`))
	require.NoError(t, err)
	require.Equal(t, `{"a":2,"b":1}`, string(out))
}

func TestCanonicalizeDropsWhitespace(t *testing.T) {
	out, err := Canonicalize([]byte(`{
		"x" : [1, 2, 3],
		"y" : "hello"
	}`))
	require.NoError(t, err)
	require.Equal(t, `{"x":[1,2,3],"y":"hello"}`, string(out))
}

func TestCanonicalizeIntegerForm(t *testing.T) {
	out, err := Canonicalize([]byte(`{"n":50.0}`))
	require.NoError(t, err)
	require.Equal(t, `{"n":50}`, string(out))
}

func TestCanonicalizeNestedObjectsAndArrays(t *testing.T) {
	out, err := Canonicalize([]byte(`{"z":{"b":1,"a":[{"y":2,"x":1}]}}`))
	require.NoError(t, err)
	require.Equal(t, `{"z":{"a":[{"x":1,"y":2}],"b":1}}`, string(out))
}

func TestMarshalCanonicalRoundTripsStruct(t *testing.T) {
	type inner struct {
		B int `json:"b"`
		A int `json:"a"`
	}

	out, err := MarshalCanonical(inner{B: 2, A: 1})
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2}`, string(out))
}

func TestCanonicalizeRejectsMalformedJSON(t *testing.T) {
	_, err := Canonicalize([]byte(`{not json`))
	require.Error(t, err)
}
