package mapper_test

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/noders-team/go-jsonmapper/pkg/mapper"
)

func TestZerologLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		message string
		context map[string]any
		want    string
	}{
		{name: "placeholders", message: "Property {property} does not exist in {class}", context: map[string]any{"property": "extra", "class": "Person"}, want: "Property extra does not exist in Person"},
		{name: "unknown placeholder kept", message: "value {x} of {y}", context: map[string]any{"x": 3}, want: "value 3 of {y}"},
		{name: "no context", message: "plain {text}", want: "plain {text}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mapper.NewZerologLogger(zerolog.New(&buf)).Log(zerolog.InfoLevel, tt.message, tt.context)

			line := buf.String()
			assert.Equal(t, "info", gjson.Get(line, "level").String())
			assert.Equal(t, tt.want, gjson.Get(line, "message").String())
			for k, v := range tt.context {
				assert.Equal(t, fmt.Sprint(v), gjson.Get(line, k).String(), k)
			}
		})
	}
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := mapper.NewZerologLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))
	logger.Log(zerolog.InfoLevel, "dropped", nil)
	assert.Empty(t, buf.String())

	logger.Log(zerolog.ErrorLevel, "kept", nil)
	assert.Equal(t, "kept", gjson.Get(buf.String(), "message").String())
}

func TestZerologLogger_UndefinedProperty(t *testing.T) {
	var buf bytes.Buffer
	m := mapper.New(mapper.WithLogger(mapper.NewZerologLogger(zerolog.New(&buf))))

	p, err := mapper.MapInto[Person](m, `{"name": "Ann", "extra": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)

	class := mapper.TypeName(reflect.TypeOf(Person{}))
	line := buf.String()
	assert.Equal(t, "info", gjson.Get(line, "level").String())
	assert.Equal(t, "Property extra does not exist in "+class, gjson.Get(line, "message").String())
	assert.Equal(t, "extra", gjson.Get(line, "property").String())
	assert.Equal(t, class, gjson.Get(line, "class").String())
}
