package config

import (
	"github.com/mitchellh/mapstructure"
)

// Convert uses mapstructure to decode between similar shapes, such as the
// raw []map[string]any viper produces for schedule.jobs and the typed
// ScheduleJob slice. Field matching uses json tags.
func Convert(src, dst any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           dst,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(src)
}

// ConvertValue is a generic helper that returns the converted value.
func ConvertValue[T any](src any) (T, error) {
	var result T
	err := Convert(src, &result)
	return result, err
}
