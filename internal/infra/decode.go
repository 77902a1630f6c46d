package infra

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/xela07ax/sentinel-console/internal/domain"
)

var statRowType = reflect.TypeOf(domain.ActivityStatRow{})

// decodeHooks — стандартные хуки viper плюс разбор строк статистики.
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(statRowHook),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// statRowHook пропускает строки activity_stats через ту же fallback-цепочку,
// что и ответ бэкенда: {event_type|activity_type, total|count}.
func statRowHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != statRowType || from.Kind() != reflect.Map {
		return data, nil
	}

	m, err := cast.ToStringMapE(data)
	if err != nil {
		return nil, fmt.Errorf("activity stat row: %w", err)
	}
	total, err := statValue(m, "total")
	if err != nil {
		return nil, err
	}
	count, err := statValue(m, "count")
	if err != nil {
		return nil, err
	}

	row := domain.NewActivityStatRow(cast.ToString(m["event_type"]), cast.ToString(m["activity_type"]), total, count)
	return map[string]interface{}{
		"event_type": row.EventType,
		"count":      row.Count,
	}, nil
}

func statValue(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("activity stat row %s: %w", key, err)
	}
	return f, nil
}
