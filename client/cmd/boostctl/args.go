// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// parseArgs converts command line strings to the Go types the ABI packer
// expects for the method inputs.
func parseArgs(m *abi.Method, strs []string) ([]any, error) {
	if len(strs) != len(m.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Sig, len(m.Inputs), len(strs))
	}
	args := make([]any, len(strs))
	for i, in := range m.Inputs {
		v, err := parseArg(in.Type, strs[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, in.Type, err)
		}
		args[i] = v
	}
	return args, nil
}

// parseArg parses a single argument. Slices are comma-separated. Tuples are
// not supported.
func parseArg(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.IntTy, abi.UintTy:
		return parseInteger(t, s)
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy:
		slice := reflect.MakeSlice(t.GetType(), 0, 0)
		if s == "" {
			return slice.Interface(), nil
		}
		for _, part := range strings.Split(s, ",") {
			v, err := parseArg(*t.Elem, part)
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, reflect.ValueOf(v))
		}
		return slice.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported argument type %s", t)
}

// parseInteger parses a decimal or 0x-prefixed integer into the sized Go type
// for the ABI integer type.
func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s out of range for %s", s, t)
		}
	} else {
		lim := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(new(big.Int).Neg(lim)) < 0 || n.Cmp(lim) >= 0 {
			return nil, fmt.Errorf("%s out of range for %s", s, t)
		}
	}
	rt := t.GetType()
	if rt == bigIntType {
		return n, nil
	}
	v := reflect.New(rt).Elem()
	if t.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}

var (
	bigIntType  = reflect.TypeOf((*big.Int)(nil))
	addressType = reflect.TypeOf(common.Address{})
	hashType    = reflect.TypeOf(common.Hash{})
)

// jsonValue converts decoded ABI values to values that marshal readably.
// Big integers become decimal strings and byte arrays become hex.
func jsonValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Type() {
	case bigIntType:
		if rv.IsNil() {
			return nil
		}
		return v.(*big.Int).String()
	case addressType:
		return v.(common.Address).Hex()
	case hashType:
		return v.(common.Hash).Hex()
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return hexutil.Encode(rv.Bytes())
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = jsonValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = jsonValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = jsonValue(rv.Field(i).Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return jsonValue(rv.Elem().Interface())
	}
	return v
}
