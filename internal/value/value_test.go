package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalStringRoundTrip(t *testing.T) {
	b, err := Marshal("table1")
	require.NoError(t, err)
	require.NotEmpty(t, b)

	s, err := UnmarshalString(b)
	require.NoError(t, err)
	require.Equal(t, "table1", s)
}

func TestMarshalRawPassesThrough(t *testing.T) {
	raw := Raw{0xe0, 0x01, 0x00, 0xea}
	b, err := Marshal(raw)
	require.NoError(t, err)
	require.Equal(t, []byte(raw), b)

	bs, err := Marshal([]byte{0x01, 0x02})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, bs)
}

func TestMarshalAll(t *testing.T) {
	out, err := MarshalAll("a", 1)
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = MarshalAll()
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestUnmarshalStruct(t *testing.T) {
	type doc struct {
		Name string `ion:"name"`
		Age  int    `ion:"age"`
	}
	b, err := Marshal(doc{Name: "alice", Age: 42})
	require.NoError(t, err)

	var got doc
	require.NoError(t, Unmarshal(b, &got))
	require.Equal(t, doc{Name: "alice", Age: 42}, got)
}
