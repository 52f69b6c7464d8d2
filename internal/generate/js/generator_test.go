package jsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/generate"
	"github.com/jptrs93/dmxproto/internal/parser"
)

func generateJS(t *testing.T, src string) string {
	t.Helper()
	file, err := parser.ParseString(src)
	require.NoError(t, err)
	out, err := generate.Generate(file, "js", generate.Options{})
	require.NoError(t, err)
	return string(out)
}

func TestRepeatedFieldIsArray(t *testing.T) {
	out := generateJS(t, `message Tagged { repeated int32 tags = 2; }`)
	assert.Contains(t, out, "/**\n * @typedef {Object} Tagged\n * @property {Array<number>} tags\n */\n")
}

func TestChannelMessageAndEnum(t *testing.T) {
	out := generateJS(t, `
enum Status { ACTIVE = 0; INACTIVE = 1; }
message UserData {
  option (dmxp_channel) = "user_updates";
  option (dmxp_wal_enabled) = true;
  string user_id = 1;
  int64 seen_at = 2;
  map<string, Status> states = 3;
  message Note { string body = 1; }
}`)

	assert.Contains(t, out, "/** @enum {number} */\nexport const Status = Object.freeze({\n  ACTIVE: 0,\n  INACTIVE: 1,\n});")
	assert.Contains(t, out, " * @property {string|undefined} userID\n")
	assert.Contains(t, out, " * @property {string|undefined} seenAt\n")
	assert.Contains(t, out, " * @property {Object<string, Status>} states\n")
	assert.Contains(t, out, " * @typedef {Object} UserData_Note\n")
	assert.Contains(t, out, " * wal_enabled: true\n */\nexport const USER_DATA_CHANNEL = \"user_updates\";")
	assert.Contains(t, out, "export function publishUserData(client, message) {\n  return client.publish(USER_DATA_CHANNEL, JSON.stringify(message));\n}")
	assert.Contains(t, out, " * @param {import(\"dmxp\").Subscriber} client\n")
	assert.Contains(t, out, "export function subscribeUserData(client, handler) {")
	assert.NotContains(t, out, "USER_DATA_NOTE_CHANNEL")
}

func TestServiceTypedef(t *testing.T) {
	out := generateJS(t, `
service Orders {
  option (dmxp_channels) = "orders";
  option (dmxp_retry_count) = 4;
  rpc GetOrder(Req) returns (Resp) { option (dmxp_timeout_ms) = 10; }
  rpc Tail(Req) returns (stream Resp);
}
channel audit-log (Resp) subscribe;`)

	assert.Contains(t, out, " * retry_count: 4\n */\nexport const ORDERS_CHANNELS = Object.freeze([\"orders\"]);")
	assert.Contains(t, out, " * @property {function(Req): Promise<Resp>} getOrder\n *   timeout_ms: 10\n")
	assert.Contains(t, out, " * @property {function(Req): AsyncIterable<Resp>} tail\n */")
	assert.Contains(t, out, "export const CHANNEL_AUDIT_LOG = \"audit-log\";")
}

func TestTable(t *testing.T) {
	table := Table{}
	assert.Equal(t, "userID", table.FieldIdentifier("user_id"))
	assert.Equal(t, "tags", table.FieldIdentifier("tags"))
	assert.Equal(t, "Outer_Inner", table.TypeIdentifier([]string{"Outer", "Inner"}))
	assert.Equal(t, "string", table.ScalarType(ast.KindUint64))
	assert.Equal(t, "boolean", table.ScalarType(ast.KindBool))
}
