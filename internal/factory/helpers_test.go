package factory

import "encoding/json"

func encodeArgs(args []any) ([]json.RawMessage, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	err = json.Unmarshal(data, &raw)
	return raw, err
}
