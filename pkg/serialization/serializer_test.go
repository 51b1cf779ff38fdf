package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestData represents test data structure
type TestData struct {
	ID    string            `json:"id" msgpack:"id"`
	Name  string            `json:"name" msgpack:"name"`
	Data  map[string]string `json:"data" msgpack:"data"`
	Count int               `json:"count" msgpack:"count"`
}

func TestJSONCodec(t *testing.T) {
	codec := NewJSONCodec()

	testData := TestData{
		ID:    "test-1",
		Name:  "Test Data",
		Data:  map[string]string{"key": "value"},
		Count: 42,
	}

	encoded, err := codec.Encode(testData)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	var decoded TestData
	err = codec.Decode(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, testData, decoded)

	assert.Equal(t, "json", codec.Name())
}

func TestMsgPackCodec(t *testing.T) {
	codec := NewMsgPackCodec()

	testData := TestData{
		ID:    "test-1",
		Name:  "Test Data",
		Data:  map[string]string{"key": "value"},
		Count: 42,
	}

	encoded, err := codec.Encode(testData)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	var decoded TestData
	err = codec.Decode(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, testData, decoded)

	assert.Equal(t, "msgpack", codec.Name())
}

func TestSerializer_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"default msgpack zstd", nil},
		{"json no compression", []Option{WithCodec(NewJSONCodec()), WithCompression(CompressionNone)}},
		{"json gzip", []Option{WithCodec(NewJSONCodec()), WithCompression(CompressionGzip)}},
		{"msgpack gzip", []Option{WithCompression(CompressionGzip)}},
		{"msgpack no compression", []Option{WithCompression(CompressionNone)}},
	}

	testData := TestData{
		ID:   "test-1",
		Name: "Large Test Data with lots of repetitive content to test compression efficiency",
		Data: map[string]string{
			"key1": "value1 repeated content repeated content repeated content",
			"key2": "value2 repeated content repeated content repeated content",
			"key3": "value3 repeated content repeated content repeated content",
		},
		Count: 1000,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serializer := New(tt.opts...)

			serialized, err := serializer.Serialize(testData)
			require.NoError(t, err)
			assert.NotEmpty(t, serialized)

			var deserialized TestData
			err = serializer.Deserialize(serialized, &deserialized)
			require.NoError(t, err)
			assert.Equal(t, testData, deserialized)
		})
	}
}

func TestSerializer_HeaderSelfDescribes(t *testing.T) {
	// Data written by one configuration must be readable by another: the
	// header records the codec and compression actually used.
	writer := New(WithCodec(NewJSONCodec()), WithCompression(CompressionGzip))
	reader := New() // msgpack + zstd

	testData := TestData{
		ID:    "cross-config",
		Name:  "Written as json+gzip, read by a msgpack+zstd serializer",
		Data:  map[string]string{"key": "value"},
		Count: 7,
	}

	serialized, err := writer.Serialize(testData)
	require.NoError(t, err)

	var deserialized TestData
	err = reader.Deserialize(serialized, &deserialized)
	require.NoError(t, err)
	assert.Equal(t, testData, deserialized)
}

func TestSerializer_ErrorHandling(t *testing.T) {
	serializer := New()

	t.Run("missing magic", func(t *testing.T) {
		var result TestData
		err := serializer.Deserialize([]byte("not a serialized payload"), &result)
		assert.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("truncated header", func(t *testing.T) {
		var result TestData
		err := serializer.Deserialize([]byte("PBAY"), &result)
		assert.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("unknown codec", func(t *testing.T) {
		data := append([]byte("PBAY"), 5)
		data = append(data, "bogus"...)
		data = append(data, compressionIDNone)

		var result TestData
		err := serializer.Deserialize(data, &result)
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("unknown compression", func(t *testing.T) {
		data := append([]byte("PBAY"), 4)
		data = append(data, "json"...)
		data = append(data, 99)

		var result TestData
		err := serializer.Deserialize(data, &result)
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("corrupted compressed payload", func(t *testing.T) {
		data := append([]byte("PBAY"), 4)
		data = append(data, "json"...)
		data = append(data, compressionIDZstd)
		data = append(data, "garbage that is not zstd"...)

		var result TestData
		err := serializer.Deserialize(data, &result)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decompression failed")
	})
}

func TestSerializer_CustomCodecRoundTrip(t *testing.T) {
	// A custom codec resolves through the serializer's own configuration
	// when the header names it.
	serializer := New(WithCodec(&upperJSONCodec{}), WithCompression(CompressionNone))

	testData := TestData{ID: "custom", Name: "Custom Codec", Count: 1}

	serialized, err := serializer.Serialize(testData)
	require.NoError(t, err)

	var deserialized TestData
	err = serializer.Deserialize(serialized, &deserialized)
	require.NoError(t, err)
	assert.Equal(t, testData, deserialized)

	// A default serializer does not know this codec.
	var other TestData
	err = New().Deserialize(serialized, &other)
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

// upperJSONCodec is a JSON codec under a non-builtin name.
type upperJSONCodec struct {
	JSONCodec
}

func (c *upperJSONCodec) Name() string { return "json-upper" }

func BenchmarkSerializer_JSON(b *testing.B) {
	serializer := New(WithCodec(NewJSONCodec()), WithCompression(CompressionNone))

	testData := TestData{
		ID:    "benchmark-test",
		Name:  "Benchmark Data",
		Data:  map[string]string{"key": "value"},
		Count: 1000,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serialized, _ := serializer.Serialize(testData)
		var deserialized TestData
		_ = serializer.Deserialize(serialized, &deserialized)
	}
}

func BenchmarkSerializer_Default(b *testing.B) {
	serializer := New()

	testData := TestData{
		ID:    "benchmark-test",
		Name:  "Benchmark Data",
		Data:  map[string]string{"key": "value"},
		Count: 1000,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serialized, _ := serializer.Serialize(testData)
		var deserialized TestData
		_ = serializer.Deserialize(serialized, &deserialized)
	}
}
