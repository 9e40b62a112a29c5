package patch_test

import (
	"encoding/json"
	"testing"

	"cerven-ot/internal/shared/patch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Title  patch.Field[string] `json:"title"`
	AckAt  patch.Field[string] `json:"ack_time"`
	Amount patch.Field[int]    `json:"amount"`
}

func TestField_Unmarshal(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Printer jam","ack_time":null}`), &b))

	assert.True(t, b.Title.Set)
	assert.False(t, b.Title.Null)
	assert.Equal(t, "Printer jam", b.Title.Value)

	assert.True(t, b.AckAt.Set)
	assert.True(t, b.AckAt.Null)

	assert.False(t, b.Amount.Set)
}

func TestField_UnmarshalTypeMismatch(t *testing.T) {
	var b body
	err := json.Unmarshal([]byte(`{"amount":"ten"}`), &b)
	assert.Error(t, err)
}

func TestField_Apply(t *testing.T) {
	existing := "09:00"
	dst := &existing

	assert.False(t, patch.Field[string]{}.Apply(&dst))
	require.NotNil(t, dst)
	assert.Equal(t, "09:00", *dst)

	assert.True(t, patch.Of("10:30").Apply(&dst))
	require.NotNil(t, dst)
	assert.Equal(t, "10:30", *dst)

	assert.True(t, patch.Null[string]().Apply(&dst))
	assert.Nil(t, dst)
}

func TestField_Marshal(t *testing.T) {
	out, err := json.Marshal(body{Title: patch.Of("x"), AckAt: patch.Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x","ack_time":null,"amount":null}`, string(out))
}
