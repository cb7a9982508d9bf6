package mcpserver

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// schemaFor は T の入力スキーマを生成し、defaults の値を各プロパティの default に設定します。
// 値域の検査はスキーマでは行わず、domain の Validate に任せます。
func schemaFor[T any](defaults map[string]any) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s のスキーマ生成に失敗しました: %w", reflect.TypeFor[T]().Name(), err)
	}

	for name, value := range defaults {
		prop, ok := schema.Properties[name]
		if !ok {
			return nil, fmt.Errorf("%s に %q プロパティがありません", reflect.TypeFor[T]().Name(), name)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%q の既定値をエンコードできません: %w", name, err)
		}
		prop.Default = raw
	}
	return schema, nil
}
