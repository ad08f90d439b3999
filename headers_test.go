package sdk_test

import (
	"testing"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/stretchr/testify/assert"
)

func TestHeaders_OrderAndValues(t *testing.T) {
	h := sdk.NewHeaders()
	h.Set("Host", "example.com")
	h.Add("Accept", "text/html")
	h.Add("Accept", "application/json")
	h.Set("X-Trace", "1")
	h.Set("Host", "other.com")

	assert.Equal(t, []string{"Host", "Accept", "X-Trace"}, h.Keys())
	assert.Equal(t, []string{"text/html", "application/json"}, h.Get("Accept"))
	assert.Equal(t, []string{"other.com"}, h.Get("Host"))
	assert.Equal(t, 3, h.Len())
}

func TestHeaders_ExactKeys(t *testing.T) {
	h := sdk.NewHeaders()
	h.Set("Content-Type", "text/plain")

	assert.Nil(t, h.Get("content-type"))
	assert.False(t, h.Has("content-type"))
	assert.True(t, h.Has("Content-Type"))
}

func TestHeaders_Del(t *testing.T) {
	h := sdk.NewHeaders()
	h.Set("A", "1")
	h.Set("B", "2")
	h.Del("A")
	h.Del("missing")

	assert.Equal(t, []string{"B"}, h.Keys())
	assert.Nil(t, h.Get("A"))
}

func TestHeaders_CopiesDoNotAlias(t *testing.T) {
	h := sdk.NewHeaders()
	h.Set("A", "1")

	values := h.Get("A")
	values[0] = "changed"
	clone := h.Clone()
	clone.Add("A", "2")

	assert.Equal(t, []string{"1"}, h.Get("A"))
	assert.Equal(t, []string{"1", "2"}, clone.Get("A"))
}

func TestHeaders_ZeroValue(t *testing.T) {
	var h sdk.Headers
	assert.Nil(t, h.Get("A"))
	assert.Zero(t, h.Len())
	h.Add("A", "1")
	assert.Equal(t, []string{"1"}, h.Get("A"))
}
