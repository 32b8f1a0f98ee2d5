package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	s, err := NewStore("  Main shop ", "https://shop.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Main shop", s.Name)
	assert.Len(t, s.GetDomainEvents(), 1)

	_, err = NewStore("", "x")
	assert.Error(t, err)
}

func TestStore_ContainsHostValue(t *testing.T) {
	s, err := NewStore("Main", "https://shop.example.com/")
	require.NoError(t, err)
	s.Hosts = "shop.example.com, WWW.Shop.Example.com ,"

	assert.Equal(t, []string{"shop.example.com", "www.shop.example.com"}, s.HostValues())
	assert.True(t, s.ContainsHostValue("shop.example.com"))
	assert.True(t, s.ContainsHostValue("www.shop.example.com:8443"))
	assert.False(t, s.ContainsHostValue("other.example.com"))
	assert.False(t, s.ContainsHostValue(""))
}
