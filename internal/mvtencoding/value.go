package mvt

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import "fmt"

// ValueKind tags the scalar families the MVT Value message supports.
type ValueKind int

const (
	KindString ValueKind = iota
	KindFloat
	KindDouble
	KindInt
	KindUint
	KindSint
	KindBool
)

// Value is a tagged attribute scalar. Two Values are structurally equal,
// for key/value-dictionary deduplication purposes, only when both Kind and
// the underlying value match -- an Int(1) and a Double(1.0) are distinct
// dictionary entries because they arrived as distinct source types.
type Value struct {
	Kind   ValueKind
	Str    string
	Float  float32
	Double float64
	Int    int64
	Uint   uint64
	Sint   int64
	Bool   bool
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func FloatValue(f float32) Value  { return Value{Kind: KindFloat, Float: f} }
func DoubleValue(f float64) Value { return Value{Kind: KindDouble, Double: f} }
func IntValue(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func UintValue(u uint64) Value    { return Value{Kind: KindUint, Uint: u} }
func SintValue(i int64) Value     { return Value{Kind: KindSint, Sint: i} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// canonicalKey is the deduplication key: same Kind and same value.
func (v Value) canonicalKey() string {
	switch v.Kind {
	case KindString:
		return fmt.Sprintf("s:%s", v.Str)
	case KindFloat:
		return fmt.Sprintf("f:%v", v.Float)
	case KindDouble:
		return fmt.Sprintf("d:%v", v.Double)
	case KindInt:
		return fmt.Sprintf("i:%d", v.Int)
	case KindUint:
		return fmt.Sprintf("u:%d", v.Uint)
	case KindSint:
		return fmt.Sprintf("z:%d", v.Sint)
	case KindBool:
		return fmt.Sprintf("b:%t", v.Bool)
	default:
		return "?"
	}
}
