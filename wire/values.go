package wire

import (
	"fmt"
	"reflect"
)

// toUint converts numeric values of any width to their raw bit pattern.
// nil stands for a zero field.
func toUint(value interface{}) (uint64, error) {
	if value == nil {
		return 0, nil
	}

	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int()), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot use %T as integer field", value)
}

func toFloat(value interface{}) (float64, error) {
	if value == nil {
		return 0, nil
	}

	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	}

	return 0, fmt.Errorf("cannot use %T as float field", value)
}

// arrayElems flattens a slice value to exactly length elements, zero-filling
// the remainder. nil stands for an all-zero array.
func arrayElems(value interface{}, length int) ([]interface{}, error) {
	res := make([]interface{}, length)

	if value == nil {
		return res, nil
	}

	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot use %T as array field", value)
	}
	if v.Len() > length {
		return nil, fmt.Errorf("%d values exceed array length %d", v.Len(), length)
	}

	for i := 0; i < v.Len(); i++ {
		res[i] = v.Index(i).Interface()
	}

	return res, nil
}
