package descriptorgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/jptrs93/dmxproto/internal/dmxpopt"
	"github.com/jptrs93/dmxproto/internal/generate"
	"github.com/jptrs93/dmxproto/internal/parser"
)

const schema = `
syntax = "proto3";
package shop;

enum Status { ACTIVE = 0; }

message Order {
  option (dmxp_channel) = "orders";
  option (dmxp_buffer_size) = 16;
  string order_id = 1;
  repeated Line lines = 2;
  map<string, Status> line_states = 3;
  Status status = 4;
  oneof payment {
    string card = 5;
    string voucher = 6;
  }
  message Line { string sku = 1; }
}

service Orders {
  option (dmxp_channels) = "orders";
  option (dmxp_timeout_ms) = 100;
  rpc Place(Order) returns (Order.Line) {
    option (dmxp_channel) = "orders.place";
    option (dmxp_async) = true;
  }
  rpc Watch(stream Order) returns (stream External);
}

channel audit (Order);
`

func TestBuild(t *testing.T) {
	file, err := parser.ParseString(schema)
	require.NoError(t, err)

	fd := Build(file, "shop.proto")
	assert.Equal(t, "shop.proto", fd.GetName())
	assert.Equal(t, "shop", fd.GetPackage())
	assert.Equal(t, "proto3", fd.GetSyntax())
	require.Len(t, fd.GetEnumType(), 1)

	require.Len(t, fd.GetMessageType(), 1)
	order := fd.GetMessageType()[0]
	assert.Equal(t, "orders", proto.GetExtension(order.GetOptions(), dmxpopt.E_MessageChannel))
	assert.Equal(t, uint32(16), proto.GetExtension(order.GetOptions(), dmxpopt.E_MessageBufferSize))
	assert.False(t, proto.HasExtension(order.GetOptions(), dmxpopt.E_MessagePersistent))

	fields := order.GetField()
	require.Len(t, fields, 6)
	assert.Equal(t, "orderId", fields[0].GetJsonName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_STRING, fields[0].GetType())

	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, fields[1].GetLabel())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, fields[1].GetType())
	assert.Equal(t, ".shop.Order.Line", fields[1].GetTypeName())

	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, fields[2].GetLabel())
	assert.Equal(t, ".shop.Order.LineStatesEntry", fields[2].GetTypeName())

	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_ENUM, fields[3].GetType())
	assert.Equal(t, ".shop.Status", fields[3].GetTypeName())

	assert.Equal(t, int32(0), fields[4].GetOneofIndex())
	assert.Equal(t, int32(0), fields[5].GetOneofIndex())
	require.Len(t, order.GetOneofDecl(), 1)
	assert.Equal(t, "payment", order.GetOneofDecl()[0].GetName())

	require.Len(t, order.GetNestedType(), 2)
	entry := order.GetNestedType()[0]
	assert.Equal(t, "LineStatesEntry", entry.GetName())
	assert.True(t, entry.GetOptions().GetMapEntry())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_ENUM, entry.GetField()[1].GetType())
	assert.Equal(t, "Line", order.GetNestedType()[1].GetName())

	require.Len(t, fd.GetService(), 1)
	svc := fd.GetService()[0]
	assert.Equal(t, []string{"orders"}, proto.GetExtension(svc.GetOptions(), dmxpopt.E_ServiceChannels))
	assert.Equal(t, uint32(100), proto.GetExtension(svc.GetOptions(), dmxpopt.E_ServiceTimeoutMs))

	place := svc.GetMethod()[0]
	assert.Equal(t, ".shop.Order", place.GetInputType())
	assert.Equal(t, ".shop.Order.Line", place.GetOutputType())
	assert.Equal(t, "orders.place", proto.GetExtension(place.GetOptions(), dmxpopt.E_MethodChannel))
	assert.Equal(t, true, proto.GetExtension(place.GetOptions(), dmxpopt.E_MethodAsync))

	watch := svc.GetMethod()[1]
	assert.True(t, watch.GetClientStreaming())
	assert.True(t, watch.GetServerStreaming())
	assert.Equal(t, "External", watch.GetOutputType())
	assert.Nil(t, watch.GetOptions())
}

func TestGenerateEmitsProtoJSON(t *testing.T) {
	file, err := parser.ParseString(schema)
	require.NoError(t, err)

	out, err := generate.Generate(file, "descriptor", generate.Options{BaseName: "shop"})
	require.NoError(t, err)
	// protojson varies the whitespace after colons between builds.
	assert.Regexp(t, `"name":\s+"shop.proto"`, string(out))
	assert.Regexp(t, `"\[dmxp\.dmxp_channel\]":\s+"orders"`, string(out))

	var fd descriptorpb.FileDescriptorProto
	require.NoError(t, protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(out, &fd))
	assert.Equal(t, "shop", fd.GetPackage())
	assert.Len(t, fd.GetMessageType(), 1)
}
