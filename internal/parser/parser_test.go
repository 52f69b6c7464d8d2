package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jptrs93/dmxproto/internal/ast"
)

func TestParseChannelMessageOnOneLine(t *testing.T) {
	file, err := ParseString(`message UserData { option (dmxp_channel) = "user_updates"; string user_id = 1; }`)
	require.NoError(t, err)

	require.Len(t, file.Messages, 1)
	msg := file.Messages[0]
	assert.Equal(t, "UserData", msg.Name)
	require.Len(t, msg.Fields, 1)
	assert.Equal(t, ast.Field{Name: "user_id", Type: ast.Scalar(ast.KindString), Number: 1, Label: ast.LabelOptional}, msg.Fields[0])
	require.NotNil(t, msg.Channel)
	require.NotNil(t, msg.Channel.Channel)
	assert.Equal(t, "user_updates", *msg.Channel.Channel)
	assert.Nil(t, msg.Channel.Persistent)
	require.Len(t, msg.Options, 1)
	assert.Equal(t, "dmxp_channel", msg.Options[0].Name)
}

func TestParseEnum(t *testing.T) {
	file, err := ParseString(`enum Status { ACTIVE = 0; INACTIVE = 1; }`)
	require.NoError(t, err)

	require.Len(t, file.Enums, 1)
	assert.Equal(t, "Status", file.Enums[0].Name)
	assert.Equal(t, []ast.EnumValue{{Name: "ACTIVE", Number: 0}, {Name: "INACTIVE", Number: 1}}, file.Enums[0].Values)
}

func TestParseService(t *testing.T) {
	file, err := ParseString(`service Orders { rpc GetOrder(GetOrderRequest) returns (GetOrderResponse); }`)
	require.NoError(t, err)

	require.Len(t, file.Services, 1)
	svc := file.Services[0]
	assert.Equal(t, "Orders", svc.Name)
	assert.Nil(t, svc.Channel)
	assert.Equal(t, []ast.Method{{Name: "GetOrder", Input: "GetOrderRequest", Output: "GetOrderResponse"}}, svc.Methods)
}

func TestParseEmptyFieldNumberFails(t *testing.T) {
	file, err := ParseString(`message Bad { string name = ; }`)
	require.Error(t, err)
	assert.Nil(t, file)
	assert.True(t, errors.Is(err, ErrMalformedField))

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Contains(t, syntaxErr.Error(), "empty field number")
}

const orderSchema = `syntax = "proto3";
package shop.v1;

import "google/protobuf/timestamp.proto";
import public "dmxp/options.proto";

option go_package = "example.com/shop";

/* Orders are published
   on every state change. */
message Order
{
  option (dmxp_channel) = "orders";
  option (dmxp_persistent) = true;
  option (dmxp_buffer_size) = 1024;

  string id = 1; // primary key
  repeated int32 tags = 2;
  map<string, int64> totals = 3;
  optional string note = 4 [default = "none", deprecated = true];
  Status status = 5;

  message Line {
    string sku = 1;
    message Discount {
      double percent = 1;
    }
    Discount discount = 2;
  }
  repeated Line lines = 6;

  enum Status {
    option allow_alias = true;
    PENDING = 0;
    SHIPPED = 1 [deprecated = true];
  }

  oneof payment {
    string card = 7;
    string voucher = 8;
  }

  reserved 9, 10;
}

service OrderService {
  option (dmxp_channels) = "orders";
  option (dmxp_channels) = "orders.audit";
  option (dmxp_timeout_ms) = 5000;
  option (dmxp_retry_count) = 3;

  rpc Place(Order) returns (Order) {
    option (dmxp.method.dmxp_channel) = "orders.place";
    option (dmxp_async) = true;
  }
  rpc Watch(stream Order) returns (stream Order);
}

extend google.protobuf.MessageOptions {
  string shard_key = 50001;
}

channel orders.audit (Order) subscribe {
  option dmxp_wal_enabled = true;
  option dmxp_priority = 7;
  option dmxp_timeout_ms = 250;
}
channel orders (Order);
`

func TestParseFullSchema(t *testing.T) {
	file, err := ParseString(orderSchema)
	require.NoError(t, err)

	assert.Equal(t, "proto3", file.Syntax)
	assert.Equal(t, "shop.v1", file.Package)
	assert.Equal(t, []string{"google/protobuf/timestamp.proto", "dmxp/options.proto"}, file.Imports)
	require.Len(t, file.Options, 1)
	assert.Equal(t, "go_package", file.Options[0].Name)
	assert.Equal(t, "example.com/shop", file.Options[0].Value.Text)

	order, ok := file.FindMessage("Order")
	require.True(t, ok)
	require.NotNil(t, order.Channel)
	assert.Equal(t, "orders", *order.Channel.Channel)
	assert.True(t, *order.Channel.Persistent)
	assert.Equal(t, uint32(1024), *order.Channel.BufferSize)
	assert.Nil(t, order.Channel.WALEnabled)

	require.Len(t, order.Fields, 8)
	assert.Equal(t, ast.LabelRepeated, order.Fields[1].Label)
	assert.Equal(t, ast.KindInt32, order.Fields[1].Type.Kind)

	totals := order.Fields[2]
	assert.Equal(t, ast.KindMap, totals.Type.Kind)
	assert.Equal(t, ast.KindString, totals.Type.Key.Kind)
	assert.Equal(t, ast.KindInt64, totals.Type.Value.Kind)

	note := order.Fields[3]
	require.NotNil(t, note.Default)
	assert.Equal(t, "none", note.Default.Text)
	assert.Len(t, note.Options, 2)

	assert.Equal(t, ast.Named("Status"), order.Fields[4].Type)
	assert.Equal(t, ast.Named("Line"), order.Fields[5].Type)
	assert.Equal(t, "payment", order.Fields[6].Oneof)
	assert.Equal(t, "payment", order.Fields[7].Oneof)

	require.Len(t, order.Messages, 1)
	line := order.Messages[0]
	require.Len(t, line.Messages, 1)
	assert.Equal(t, "Discount", line.Messages[0].Name)
	assert.Equal(t, "percent", line.Messages[0].Fields[0].Name)

	require.Len(t, order.Enums, 1)
	status := order.Enums[0]
	require.Len(t, status.Values, 2)
	assert.Equal(t, "SHIPPED", status.Values[1].Name)
	assert.Len(t, status.Values[1].Options, 1)
	assert.Len(t, status.Options, 1)

	svc, ok := file.FindService("OrderService")
	require.True(t, ok)
	require.NotNil(t, svc.Channel)
	assert.Equal(t, []string{"orders", "orders.audit"}, svc.Channel.Channels)
	assert.Equal(t, uint32(5000), *svc.Channel.TimeoutMs)
	assert.Equal(t, uint32(3), *svc.Channel.RetryCount)

	require.Len(t, svc.Methods, 2)
	place := svc.Methods[0]
	require.NotNil(t, place.Channel)
	assert.Equal(t, "orders.place", *place.Channel.Channel)
	assert.True(t, *place.Channel.Async)
	assert.Len(t, place.Options, 2)
	watch := svc.Methods[1]
	assert.True(t, watch.ClientStreaming)
	assert.True(t, watch.ServerStreaming)
	assert.Nil(t, watch.Channel)

	require.Len(t, file.Extensions, 1)
	assert.Equal(t, "shard_key", file.Extensions[0].Name)
	assert.Equal(t, "google.protobuf.MessageOptions", file.Extensions[0].Extendee)
	assert.Equal(t, int32(50001), file.Extensions[0].Number)

	require.Len(t, file.Channels, 2)
	audit := file.Channels[0]
	assert.Equal(t, "orders.audit", audit.Name)
	assert.Equal(t, "Order", audit.MessageType)
	assert.Equal(t, ast.Subscribe, audit.Direction)
	assert.True(t, *audit.Options.WALEnabled)
	assert.Equal(t, uint32(7), *audit.Options.Priority)
	assert.Equal(t, uint32(250), *audit.Options.TimeoutMs)
	assert.Equal(t, ast.Bidirectional, file.Channels[1].Direction)
}

func TestParseOptionsMergeIntoOneBinding(t *testing.T) {
	file, err := ParseString(`
message Event {
  option (dmxp_priority) = 2;
  option (dmxp_swap_enabled) = false;
  option (dmxp_priority) = 9;
}`)
	require.NoError(t, err)

	b := file.Messages[0].Channel
	require.NotNil(t, b)
	assert.Nil(t, b.Channel)
	assert.Equal(t, uint32(9), *b.Priority)
	assert.False(t, *b.SwapEnabled)
}

func TestParseIgnoresOptionsOutOfScopeOrOfWrongType(t *testing.T) {
	file, err := ParseString(`
message Event {
  option (dmxp_channels) = "not_for_messages";
  option (dmxp_async) = true;
  option (dmxp_persistent) = maybe;
  option (dmxp_buffer_size) = -4;
  option (custom_flag) = true;
}`)
	require.NoError(t, err)

	msg := file.Messages[0]
	assert.Nil(t, msg.Channel)
	assert.Len(t, msg.Options, 5)
}

func TestParseNoChannelWithoutDmxpOptions(t *testing.T) {
	file, err := ParseString("message Plain {\n  string a = 1;\n}\n")
	require.NoError(t, err)
	assert.Nil(t, file.Messages[0].Channel)
	assert.Empty(t, file.ChannelMessages())
}

func TestParseAggregateOptionKeepsFollowingFields(t *testing.T) {
	srcs := map[string]string{
		"one line": `message A { option (x) = { a: 1; b: "}" }; string b = 1; }`,
		"multi line": "message A {\n  option (x) = {\n    a: 1\n    b: \"}\"\n  };\n  string b = 1;\n}\n",
		"value on next line": "message A {\n  option (x) =\n    { a: 1 };\n  string b = 1;\n}\n",
	}
	for name, src := range srcs {
		t.Run(name, func(t *testing.T) {
			file, err := ParseString(src)
			require.NoError(t, err)
			require.Len(t, file.Messages, 1)
			msg := file.Messages[0]
			require.Len(t, msg.Fields, 1)
			assert.Equal(t, "b", msg.Fields[0].Name)
			require.Len(t, msg.Options, 1)
			assert.Equal(t, "x", msg.Options[0].Name)
			assert.Equal(t, ast.ValueIdent, msg.Options[0].Value.Kind)
			assert.Regexp(t, `^\{ a: 1;?\s+b: "\}" \}$|^\{ a: 1 \}$`, msg.Options[0].Value.Text)
		})
	}
}

func TestParseFieldTypesNamedLikeKeywords(t *testing.T) {
	file, err := ParseString("message A {\n  service.Config cfg = 1;\n  channel.Event ev = 2;\n  option.Set opts = 3;\n}\n")
	require.NoError(t, err)
	require.Len(t, file.Messages, 1)
	fields := file.Messages[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "cfg", fields[0].Name)
	assert.Equal(t, "service.Config", fields[0].Type.Name)
	assert.Equal(t, "ev", fields[1].Name)
	assert.Equal(t, "channel.Event", fields[1].Type.Name)
	assert.Equal(t, "opts", fields[2].Name)
	assert.Empty(t, file.Messages[0].Options)
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{name: "unterminated message", src: "syntax = \"proto3\";\nmessage A {\n  string a = 1;\n", want: ErrUnterminatedBlock, line: 2},
		{name: "unterminated nested", src: "message A {\n  message B {\n  }\n", want: ErrUnterminatedBlock, line: 1},
		{name: "rpc without returns", src: "service S {\n  rpc Broken(Req);\n}", want: ErrMalformedRPC, line: 2},
		{name: "enum value not a number", src: "enum E {\n  A = first;\n}", want: ErrMalformedEnumValue, line: 2},
		{name: "field number not a number", src: "message A {\n  string a = one;\n}", want: ErrMalformedField, line: 2},
		{name: "field number zero", src: "message A {\n  string a = 0;\n}", want: ErrMalformedField, line: 2},
		{name: "unknown channel direction", src: "channel c (A) sideways;", want: ErrMalformedChannel, line: 1},
		{name: "channel without type", src: "channel c publish;", want: ErrMalformedChannel, line: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file, err := ParseString(tc.src)
			require.Error(t, err)
			assert.Nil(t, file)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tc.line, syntaxErr.Line)
		})
	}
}

func TestParseSkipsUnknownStatements(t *testing.T) {
	file, err := ParseString(`
edition = "2023";
message A {
  reserved 2;
  extensions 100 to 199;
  string a = 1;
}
weird top level;
`)
	require.NoError(t, err)
	require.Len(t, file.Messages, 1)
	assert.Len(t, file.Messages[0].Fields, 1)
}

func TestParserLoadsFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schemas/a.proto", []byte(`message A { string a = 1; }`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "schemas/b.proto", []byte(`enum B { X = 0; }`), 0o644))

	p := &Parser{Loader: &FSLoader{Fs: fs}}
	files, err := p.Parse(context.Background(), []string{"schemas/a.proto", "schemas/b.proto"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "A", files[0].Messages[0].Name)
	assert.Equal(t, "B", files[1].Enums[0].Name)

	_, err = p.Parse(context.Background(), []string{"schemas/missing.proto"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load schemas/missing.proto")

	require.NoError(t, afero.WriteFile(fs, "schemas/bad.proto", []byte("message Bad {\n"), 0o644))
	_, err = p.Parse(context.Background(), []string{"schemas/bad.proto"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedBlock))
	assert.Contains(t, err.Error(), "schemas/bad.proto")
}

func TestParserHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Parser{Loader: &FSLoader{Fs: afero.NewMemMapFs()}}
	_, err := p.Parse(ctx, []string{"a.proto"})
	assert.ErrorIs(t, err, context.Canceled)
}
