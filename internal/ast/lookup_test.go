package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFile() *File {
	return &File{
		Messages: []Message{
			{Name: "Plain"},
			{Name: "Order", Channel: &ChannelBinding{Channel: Ptr("orders")}},
			{Name: "Draft", Channel: &ChannelBinding{Persistent: Ptr(true)}},
		},
		Services: []Service{
			{Name: "Quiet"},
			{Name: "Orders", Channel: &ServiceChannelBinding{Channels: []string{"orders"}}},
			{Name: "Timed", Channel: &ServiceChannelBinding{TimeoutMs: Ptr(uint32(5))}},
		},
		Enums: []Enum{{Name: "Status"}},
	}
}

func TestFind(t *testing.T) {
	f := lookupFile()

	m, ok := f.FindMessage("Order")
	require.True(t, ok)
	assert.Equal(t, "Order", m.Name)
	m.Name = "Renamed"
	assert.Equal(t, "Renamed", f.Messages[1].Name, "FindMessage returns a pointer into the file")

	_, ok = f.FindMessage("Missing")
	assert.False(t, ok)

	s, ok := f.FindService("Orders")
	require.True(t, ok)
	assert.Equal(t, []string{"orders"}, s.Channel.Channels)

	_, ok = f.FindEnum("Status")
	assert.True(t, ok)
	_, ok = f.FindEnum("Order")
	assert.False(t, ok)
}

func TestChannelViews(t *testing.T) {
	f := lookupFile()

	msgs := f.ChannelMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Order", msgs[0].Name)

	name, ok := msgs[0].ChannelName()
	assert.True(t, ok)
	assert.Equal(t, "orders", name)

	_, ok = f.Messages[2].ChannelName()
	assert.False(t, ok, "a binding without a channel name is not a channel message")

	svcs := f.ChannelServices()
	require.Len(t, svcs, 1)
	assert.Equal(t, "Orders", svcs[0].Name)
}
